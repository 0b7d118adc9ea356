package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"career-assess/internal/domain"
	"career-assess/internal/scoring"
	"career-assess/internal/service"
)

var takeCmd = &cobra.Command{
	Use:   "take <instrument>",
	Short: "Take an assessment interactively",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		instrument, err := instrumentArg(args)
		if err != nil {
			return err
		}
		userID, _ := cmd.Flags().GetString("user")

		d, err := buildDeps(ctx, cmd)
		if err != nil {
			return err
		}
		defer d.close()

		events := make(chan service.SessionEvent, 16)
		manager := service.NewSessionManager(d.gate, d.bank, d.results, nil, service.SessionManagerConfig{
			Session: service.SessionConfig{
				QuestionSeconds: d.cfg.QuestionSeconds,
				TickInterval:    d.cfg.TickInterval,
				PersistTimeout:  d.cfg.PersistTimeout,
			},
			IdleTTL: d.cfg.SessionIdleTTL,
			Listener: func(ev service.SessionEvent) {
				select {
				case events <- ev:
				default:
				}
			},
		}, d.logger)
		defer manager.Close()

		sess, err := manager.Start(ctx, userID, instrument)
		if errors.Is(err, service.ErrAlreadyAttempted) {
			fmt.Printf("%s sudah pernah dikerjakan oleh %s.\n", instrument.DisplayName(), userID)
			return nil
		}
		if err != nil {
			return err
		}

		fmt.Printf("== %s ==\n", instrument.DisplayName())
		fmt.Println("Ketik nomor opsi untuk menjawab, [p] sebelumnya, [s] kirim, [q] keluar.")
		// margen sobre el timeout de persistencia para un guardado que inicio el timer
		persistWait := d.cfg.PersistTimeout + time.Second
		return runSession(ctx, bufio.NewReader(os.Stdin), sess, events, persistWait)
	},
}

func runSession(ctx context.Context, reader *bufio.Reader, sess *service.AssessmentSession, events <-chan service.SessionEvent, persistWait time.Duration) error {
	for {
		drainEvents(events)
		snap := sess.Snapshot()
		if snap.State != domain.SessionInProgress {
			break
		}
		q := snap.Current
		fmt.Printf("\n[%d/%d] %s (sisa waktu: %d)\n", snap.Index+1, snap.Total, q.Text, snap.Remaining)
		for i, opt := range q.Options {
			marker := " "
			if snap.CurrentAnswer != nil && snap.CurrentAnswer.Option == i {
				marker = "*"
			}
			fmt.Printf(" %s%d) %s\n", marker, i+1, opt.Label)
		}
		fmt.Print("> ")

		line, err := reader.ReadString('\n')
		if err != nil {
			_ = sess.Abandon()
			return fmt.Errorf("read input: %w", err)
		}
		line = strings.ToLower(strings.TrimSpace(line))

		// el timer pudo haber avanzado mientras se esperaba la respuesta
		if now := sess.Snapshot(); now.State != domain.SessionInProgress || now.Current == nil || now.Current.ID != q.ID {
			fmt.Println("Waktu habis untuk pertanyaan ini.")
			continue
		}

		switch line {
		case "q":
			if err := sess.Abandon(); err != nil {
				return err
			}
			fmt.Println("Sesi dibatalkan. Tidak ada hasil yang disimpan.")
			return nil
		case "p":
			_ = sess.Previous()
		case "s":
			if _, err := sess.Submit(ctx); err != nil {
				reportSubmitError(err)
			}
		default:
			n, err := strconv.Atoi(line)
			if err != nil {
				fmt.Println("Input tidak valid.")
				continue
			}
			if err := sess.AnswerOption(q.ID, n-1); err != nil {
				fmt.Printf("Jawaban tidak valid: %v\n", err)
				continue
			}
			if err := sess.Next(ctx); err != nil {
				reportSubmitError(err)
			}
		}
	}

	drainEvents(events)
	return finishSession(ctx, sess, events, persistWait)
}

func finishSession(ctx context.Context, sess *service.AssessmentSession, events <-chan service.SessionEvent, wait time.Duration) error {
	result, ok := sess.Result()
	if !ok {
		return nil
	}
	err := settlePersist(ctx, sess, events, wait)
	printResult(result)
	if err != nil {
		return fmt.Errorf("result computed but not stored: %w", err)
	}
	return nil
}

// settlePersist asegura que el resultado quede guardado. Si el timer ya lo esta
// guardando espera su evento en lugar de reintentar en paralelo.
func settlePersist(ctx context.Context, sess *service.AssessmentSession, events <-chan service.SessionEvent, wait time.Duration) error {
	if !sess.Snapshot().PersistPending {
		return nil
	}
	_, err := sess.RetryPersist(ctx)
	if !errors.Is(err, service.ErrInvalidTransition) {
		return err
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	for {
		select {
		case ev := <-events:
			if ev.SessionID != sess.ID() {
				continue
			}
			switch ev.Kind {
			case service.SessionEventCompleted:
				return nil
			case service.SessionEventPersistFailed:
				_, err := sess.RetryPersist(ctx)
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			if !sess.Snapshot().PersistPending {
				return nil
			}
			return fmt.Errorf("timed out after %s waiting for result persistence", wait)
		}
	}
}

func drainEvents(events <-chan service.SessionEvent) {
	for {
		select {
		case ev := <-events:
			switch ev.Kind {
			case service.SessionEventAutoAdvanced:
				fmt.Printf("\n(waktu habis, lanjut ke pertanyaan %d)\n", ev.Index+1)
			case service.SessionEventSubmitFailed:
				fmt.Println("\n(masih ada pertanyaan yang belum dijawab)")
			case service.SessionEventPersistFailed:
				fmt.Printf("\n(gagal menyimpan hasil: %v)\n", ev.Err)
			}
		default:
			return
		}
	}
}

func reportSubmitError(err error) {
	switch {
	case errors.Is(err, scoring.ErrIncompleteAnswers):
		fmt.Println("Masih ada pertanyaan yang belum dijawab; kembali ke pertanyaan pertama yang kosong.")
	case errors.Is(err, service.ErrPersistence), errors.Is(err, service.ErrResultConflict):
		fmt.Printf("Hasil dihitung tetapi belum tersimpan: %v\n", err)
	default:
		fmt.Printf("Error: %v\n", err)
	}
}

package scoring

import (
	"strings"

	"career-assess/internal/domain"
)

const (
	unknownTypeTitle       = "Tipe Tidak Dikenal"
	unknownTypeDescription = "Kombinasi preferensi Anda belum memiliki deskripsi khusus. Lihat rincian skor tiap dimensi untuk memahami kecenderungan Anda."
)

type typeInfo struct {
	Title       string
	Description string
}

var typeTable = map[string]typeInfo{
	"ISTJ": {"Sang Pengawas", "Teliti, bertanggung jawab, dan mengandalkan fakta. Cocok untuk peran yang menuntut ketepatan dan konsistensi."},
	"ISFJ": {"Sang Pelindung", "Setia, hangat, dan telaten menjaga kebutuhan orang lain. Kuat dalam peran layanan dan dukungan."},
	"INFJ": {"Sang Penasihat", "Idealis, berwawasan, dan peka terhadap makna. Cocok untuk peran pengembangan manusia."},
	"INTJ": {"Sang Arsitek", "Strategis, mandiri, dan berorientasi pada visi jangka panjang."},
	"ISTP": {"Sang Pengrajin", "Praktis, tenang, dan cekatan memecahkan masalah teknis."},
	"ISFP": {"Sang Seniman", "Lembut, fleksibel, dan peka terhadap estetika serta nilai pribadi."},
	"INFP": {"Sang Mediator", "Reflektif, penuh empati, dan digerakkan oleh nilai-nilai pribadi."},
	"INTP": {"Sang Pemikir", "Analitis, ingin tahu, dan senang membangun kerangka berpikir."},
	"ESTP": {"Sang Pengusaha", "Energik, spontan, dan cepat bertindak di situasi nyata."},
	"ESFP": {"Sang Penghibur", "Ramah, antusias, dan senang membuat suasana kerja hidup."},
	"ENFP": {"Sang Juru Kampanye", "Kreatif, bersemangat, dan pandai menginspirasi orang lain."},
	"ENTP": {"Sang Pendebat", "Inovatif, cerdik, dan menikmati tantangan intelektual."},
	"ESTJ": {"Sang Eksekutif", "Terorganisir, tegas, dan efektif mengelola orang serta proses."},
	"ENFJ": {"Sang Protagonis", "Karismatik, peduli, dan piawai menggerakkan tim."},
	"ENTJ": {"Sang Komandan", "Berani, visioner, dan tegas dalam memimpin perubahan."},
	"ESFJ": {"Sang Konsul", "Perhatian, kooperatif, dan menjaga keharmonisan tim."},
}

// ScoreMBTI tallies the chosen trait letters and derives the four-letter type.
func ScoreMBTI(questions []domain.Question, answers domain.AnswerSet) (domain.DichotomyResult, error) {
	if err := checkComplete(questions, answers); err != nil {
		return domain.DichotomyResult{}, err
	}

	tally := make(map[domain.TraitCode]int, 8)
	for _, pair := range domain.TraitPairs {
		tally[pair.First] = 0
		tally[pair.Second] = 0
	}
	for _, q := range questions {
		tally[domain.TraitCode(answers[q.ID].Code)]++
	}

	code := DeriveType(tally)
	title, description := DescribeType(code)
	return domain.DichotomyResult{
		Tally:       tally,
		TypeCode:    code,
		Title:       title,
		Description: description,
	}, nil
}

// DeriveType picks the winner of each pair. Ties go to the pair's first letter (E, S, T, J).
func DeriveType(tally map[domain.TraitCode]int) string {
	var b strings.Builder
	for _, pair := range domain.TraitPairs {
		if tally[pair.Second] > tally[pair.First] {
			b.WriteString(string(pair.Second))
		} else {
			b.WriteString(string(pair.First))
		}
	}
	return b.String()
}

// DescribeType looks up the static table; unmapped codes get a fallback, never an error.
func DescribeType(code string) (title, description string) {
	if info, ok := typeTable[code]; ok {
		return info.Title, info.Description
	}
	return unknownTypeTitle, unknownTypeDescription
}

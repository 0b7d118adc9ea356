package domain

// Aspect es una de las cuatro categorias de puntuacion del test kraepelin.
type Aspect string

const (
	AspectConcentration Aspect = "concentration"
	AspectSpeed         Aspect = "speed"
	AspectAccuracy      Aspect = "accuracy"
	AspectStamina       Aspect = "stamina"
)

// Aspects devuelve los aspectos en orden canonico.
var Aspects = [4]Aspect{AspectConcentration, AspectSpeed, AspectAccuracy, AspectStamina}

func IsValidAspect(a Aspect) bool {
	for _, known := range Aspects {
		if a == known {
			return true
		}
	}
	return false
}

// Label devuelve el nombre visible del aspecto.
func (a Aspect) Label() string {
	switch a {
	case AspectConcentration:
		return "konsentrasi"
	case AspectSpeed:
		return "kecepatan"
	case AspectAccuracy:
		return "ketelitian"
	case AspectStamina:
		return "ketahanan"
	default:
		return string(a)
	}
}

package domain

// Dimension es uno de los veinte codigos del inventario papi.
type Dimension string

// DimensionInfo describe una dimension para anotar los resultados.
type DimensionInfo struct {
	Code        Dimension `json:"code"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
}

// Dimensions lista las veinte dimensiones en orden canonico; ese orden desempata el ranking.
var Dimensions = [20]DimensionInfo{
	{Code: "N", Name: "Kebutuhan menyelesaikan tugas", Description: "Dorongan untuk menuntaskan pekerjaan sampai selesai."},
	{Code: "G", Name: "Peran pekerja keras", Description: "Kesediaan bekerja keras dan menanggung beban kerja tinggi."},
	{Code: "A", Name: "Kebutuhan berprestasi", Description: "Keinginan mencapai target dan menjadi yang terbaik."},
	{Code: "L", Name: "Peran kepemimpinan", Description: "Kecenderungan mengambil peran sebagai pemimpin kelompok."},
	{Code: "P", Name: "Kebutuhan mengatur orang lain", Description: "Dorongan untuk mengarahkan dan mengendalikan orang lain."},
	{Code: "I", Name: "Kemudahan mengambil keputusan", Description: "Kecepatan dan keyakinan saat memutuskan sesuatu."},
	{Code: "T", Name: "Tempo kerja", Description: "Kecenderungan bekerja dengan ritme cepat dan sibuk."},
	{Code: "V", Name: "Semangat fisik", Description: "Kebutuhan untuk aktif bergerak dan berenergi."},
	{Code: "X", Name: "Kebutuhan untuk diperhatikan", Description: "Keinginan menonjol dan mendapat pengakuan."},
	{Code: "S", Name: "Hubungan sosial", Description: "Kemudahan menjalin hubungan dengan orang baru."},
	{Code: "B", Name: "Kebutuhan diterima kelompok", Description: "Keinginan menjadi bagian dari kelompok."},
	{Code: "O", Name: "Kebutuhan kedekatan", Description: "Kebutuhan akan kedekatan emosional dan kasih sayang."},
	{Code: "R", Name: "Tipe teoretis", Description: "Ketertarikan pada ide, konsep, dan pemikiran abstrak."},
	{Code: "D", Name: "Minat pada detail", Description: "Ketelitian dan minat pada pekerjaan yang rinci."},
	{Code: "C", Name: "Tipe teratur", Description: "Kecenderungan bekerja rapi, sistematis, dan terencana."},
	{Code: "Z", Name: "Kebutuhan akan perubahan", Description: "Ketertarikan pada hal baru dan variasi."},
	{Code: "E", Name: "Pengendalian emosi", Description: "Kemampuan menahan dan mengelola emosi."},
	{Code: "K", Name: "Kebutuhan untuk tegas", Description: "Keberanian bersikap tegas dan mempertahankan pendapat."},
	{Code: "F", Name: "Dukungan pada atasan", Description: "Kesetiaan dan dukungan terhadap otoritas."},
	{Code: "W", Name: "Kebutuhan aturan dan arahan", Description: "Kebutuhan akan aturan yang jelas dan supervisi."},
}

// LookupDimension devuelve la descripcion estatica de un codigo.
func LookupDimension(code Dimension) (DimensionInfo, bool) {
	for _, info := range Dimensions {
		if info.Code == code {
			return info, true
		}
	}
	return DimensionInfo{}, false
}

// DimensionIndex devuelve la posicion canonica, o -1 si el codigo no existe.
func DimensionIndex(code Dimension) int {
	for i, info := range Dimensions {
		if info.Code == code {
			return i
		}
	}
	return -1
}

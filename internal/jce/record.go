package jce

import (
	"encoding/xml"
	"strings"
)

// Record maps the XML payload returned by the JCE data portal. Every field is
// an optional string exactly as the portal sends it; interpretation helpers
// live on the type so callers never touch raw codes.
type Record struct {
	XMLName xml.Name `xml:"root" json:"-"`

	Nombres   string `xml:"nombres"`
	Apellido1 string `xml:"apellido1"`
	Apellido2 string `xml:"apellido2"`

	FechaNacimiento string `xml:"fecha_nac"`
	LugarNacimiento string `xml:"lugar_nac"`
	FechaExpiracion string `xml:"fecha_expiracion"`

	Sexo        string `xml:"sexo"`
	EstadoCivil string `xml:"est_civil"`
	Edad        string `xml:"edad"`

	CodigoNacionalidad      string `xml:"cod_nacion"`
	DescripcionNacionalidad string `xml:"desc_nacionalidad"`
	MunicipioCedula         string `xml:"mun_ced"`
	SecuenciaCedula         string `xml:"seq_ced"`

	Ocupacion string `xml:"ocupacion"`

	Conyugue       string `xml:"conyugue"`
	CedulaConyugue string `xml:"cedula_conyugue"`
	Padre          string `xml:"padre"`
	Madre          string `xml:"madre"`

	CedulaVieja string `xml:"cedula_vieja"`
	Pasaporte   string `xml:"pasaporte"`
	FotoURL     string `xml:"fotourl"`

	Categoria            string `xml:"categoria"`
	DescripcionCategoria string `xml:"desc_categoria"`
	Estatus              string `xml:"estatus"`

	CodigoCausa                 string `xml:"cod_causa"`
	DescripcionCausaInhabilidad string `xml:"desc_causa_inhabilidad"`
	DescripcionTipoCausa        string `xml:"desc_tipo_causa"`

	Success      string `xml:"success"`
	Message      string `xml:"message"`
	ResponseTime string `xml:"responsetime"`
}

// ConsultaExitosa reports whether the portal answered with usable citizen
// data. The portal sometimes returns success=true with empty name fields for
// unknown cédulas, so both name fields must be present as well.
func (r *Record) ConsultaExitosa() bool {
	success := strings.EqualFold(r.Success, "true") || r.Success == "1"
	return success &&
		strings.TrimSpace(r.Nombres) != "" &&
		strings.TrimSpace(r.Apellido1) != ""
}

// TieneFotoDisponible reports whether the record carries a usable photo path.
func (r *Record) TieneFotoDisponible() bool {
	foto := strings.TrimSpace(r.FotoURL)
	return foto != "" && !strings.EqualFold(foto, "null")
}

// EstadoCivilDescripcion translates the single letter marital status code.
// Unknown codes pass through untouched.
func (r *Record) EstadoCivilDescripcion() string {
	switch strings.ToUpper(strings.TrimSpace(r.EstadoCivil)) {
	case "":
		return ""
	case "C":
		return "CASADO"
	case "D":
		return "DIVORCIADO"
	case "S":
		return "SOLTERO"
	case "V":
		return "VIUDO"
	case "U":
		return "UNION LIBRE"
	case "SE":
		return "SEPARADO"
	default:
		return r.EstadoCivil
	}
}

// EstatusDescripcion translates the document status code.
func (r *Record) EstatusDescripcion() string {
	switch strings.ToUpper(strings.TrimSpace(r.Estatus)) {
	case "":
		return ""
	case "N":
		return "NO ATENDIDO"
	case "P":
		return "EN PROCESO"
	case "T":
		return "TERMINADO"
	case "A":
		return "APROBADO"
	case "R":
		return "RECHAZADO"
	default:
		return r.Estatus
	}
}

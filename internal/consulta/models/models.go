// Package models defines the request and response shapes of the consulta API
// and the projection of registry records into its response views.
package models

import (
	"strings"
	"time"

	"jceconsulta/pkg/apierrors"
)

// Formato selects which subset of the citizen record a response carries.
type Formato string

const (
	FormatoCompleto Formato = "completo"
	FormatoBasico   Formato = "basico"
	FormatoPersonal Formato = "personal"
	FormatoFamiliar Formato = "familiar"
)

// ParseFormato normalizes a requested response format. An empty value selects
// the complete view; anything unrecognized is rejected.
func ParseFormato(raw string) (Formato, error) {
	switch Formato(strings.ToLower(strings.TrimSpace(raw))) {
	case "", FormatoCompleto:
		return FormatoCompleto, nil
	case FormatoBasico:
		return FormatoBasico, nil
	case FormatoPersonal:
		return FormatoPersonal, nil
	case FormatoFamiliar:
		return FormatoFamiliar, nil
	default:
		return "", apierrors.New(apierrors.CodeFormatoNoSoportado,
			"Formato no soportado: use completo, basico, personal o familiar")
	}
}

// ConsultaRequest is the body of a consultation request.
type ConsultaRequest struct {
	Cedula      string `json:"cedula"`
	IncluirFoto bool   `json:"incluirFoto"`
	Formato     string `json:"formato"`
}

// ConsultaResponse is the envelope every consultation answer travels in,
// success and error alike. Codigo is the stable machine-readable outcome.
type ConsultaResponse struct {
	Exitosa          bool             `json:"exitosa"`
	Mensaje          string           `json:"mensaje"`
	Codigo           apierrors.Code   `json:"codigo"`
	Timestamp        time.Time        `json:"timestamp"`
	TiempoRespuesta  int64            `json:"tiempoRespuestaMs"`
	CedulaConsultada string           `json:"cedulaConsultada,omitempty"`
	Datos            *DatosCiudadano  `json:"datos,omitempty"`
	Foto             *InformacionFoto `json:"foto,omitempty"`
	RetryAfter       int64            `json:"retryAfterSegundos,omitempty"`
}

// DatosCiudadano is the citizen payload. Fields absent from the requested
// view are left empty and dropped from the JSON.
type DatosCiudadano struct {
	Cedula         string `json:"cedula,omitempty"`
	Nombres        string `json:"nombres,omitempty"`
	Apellido1      string `json:"apellido1,omitempty"`
	Apellido2      string `json:"apellido2,omitempty"`
	NombreCompleto string `json:"nombreCompleto,omitempty"`

	FechaNacimiento string `json:"fechaNacimiento,omitempty"`
	LugarNacimiento string `json:"lugarNacimiento,omitempty"`
	FechaExpiracion string `json:"fechaExpiracion,omitempty"`

	Sexo                   string `json:"sexo,omitempty"`
	EstadoCivil            string `json:"estadoCivil,omitempty"`
	DescripcionEstadoCivil string `json:"descripcionEstadoCivil,omitempty"`
	Edad                   string `json:"edad,omitempty"`

	CodigoNacionalidad      string `json:"codigoNacionalidad,omitempty"`
	DescripcionNacionalidad string `json:"descripcionNacionalidad,omitempty"`
	MunicipioCedula         string `json:"municipioCedula,omitempty"`
	SecuenciaCedula         string `json:"secuenciaCedula,omitempty"`

	Ocupacion string `json:"ocupacion,omitempty"`

	Conyugue       string `json:"conyugue,omitempty"`
	CedulaConyugue string `json:"cedulaConyugue,omitempty"`
	Padre          string `json:"padre,omitempty"`
	Madre          string `json:"madre,omitempty"`

	CedulaVieja string `json:"cedulaVieja,omitempty"`
	Pasaporte   string `json:"pasaporte,omitempty"`

	Categoria            string `json:"categoria,omitempty"`
	DescripcionCategoria string `json:"descripcionCategoria,omitempty"`
	Estatus              string `json:"estatus,omitempty"`
	DescripcionEstatus   string `json:"descripcionEstatus,omitempty"`

	CodigoCausa                 string `json:"codigoCausa,omitempty"`
	DescripcionCausaInhabilidad string `json:"descripcionCausaInhabilidad,omitempty"`
	DescripcionTipoCausa        string `json:"descripcionTipoCausa,omitempty"`
}

// InformacionFoto reports photo availability for the consulted citizen.
type InformacionFoto struct {
	Disponible bool   `json:"disponible"`
	URL        string `json:"url,omitempty"`
	Mensaje    string `json:"mensaje,omitempty"`
}

// Exitosa builds a successful response envelope.
func Exitosa(cedula string, datos *DatosCiudadano, foto *InformacionFoto, elapsed time.Duration) *ConsultaResponse {
	return &ConsultaResponse{
		Exitosa:          true,
		Mensaje:          "Consulta realizada exitosamente",
		Codigo:           apierrors.CodeSuccess,
		Timestamp:        time.Now(),
		TiempoRespuesta:  elapsed.Milliseconds(),
		CedulaConsultada: cedula,
		Datos:            datos,
		Foto:             foto,
	}
}

// Fallida builds an error response envelope from a domain error.
func Fallida(cedula string, apiErr *apierrors.Error, elapsed time.Duration) *ConsultaResponse {
	return &ConsultaResponse{
		Exitosa:          false,
		Mensaje:          apiErr.Message,
		Codigo:           apiErr.Code,
		Timestamp:        time.Now(),
		TiempoRespuesta:  elapsed.Milliseconds(),
		CedulaConsultada: cedula,
	}
}

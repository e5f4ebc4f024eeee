package models

import (
	"strings"

	"jceconsulta/internal/jce"
)

// Shape projects a registry record into the requested response view. The
// record itself is never mutated; each call derives a fresh payload so cached
// records can be reshaped per request.
func Shape(cedula string, rec *jce.Record, formato Formato) *DatosCiudadano {
	d := &DatosCiudadano{
		Cedula:         cedula,
		Nombres:        limpiar(rec.Nombres),
		Apellido1:      limpiar(rec.Apellido1),
		Apellido2:      limpiar(rec.Apellido2),
		NombreCompleto: nombreCompleto(rec),

		FechaNacimiento:         limpiar(rec.FechaNacimiento),
		Sexo:                    limpiar(rec.Sexo),
		EstadoCivil:             limpiar(rec.EstadoCivil),
		DescripcionEstadoCivil:  limpiar(rec.EstadoCivilDescripcion()),
		DescripcionNacionalidad: limpiar(rec.DescripcionNacionalidad),
		Estatus:                 limpiar(rec.Estatus),
		DescripcionEstatus:      limpiar(rec.EstatusDescripcion()),
	}

	if formato == FormatoBasico {
		return d
	}

	d.LugarNacimiento = limpiar(rec.LugarNacimiento)
	d.FechaExpiracion = limpiar(rec.FechaExpiracion)
	d.Edad = limpiar(rec.Edad)
	d.CodigoNacionalidad = limpiar(rec.CodigoNacionalidad)
	d.MunicipioCedula = limpiar(rec.MunicipioCedula)
	d.SecuenciaCedula = limpiar(rec.SecuenciaCedula)
	d.Ocupacion = limpiar(rec.Ocupacion)
	d.CedulaVieja = limpiar(rec.CedulaVieja)
	d.Pasaporte = limpiar(rec.Pasaporte)
	d.Categoria = limpiar(rec.Categoria)
	d.DescripcionCategoria = limpiar(rec.DescripcionCategoria)
	d.CodigoCausa = limpiar(rec.CodigoCausa)
	d.DescripcionCausaInhabilidad = limpiar(rec.DescripcionCausaInhabilidad)
	d.DescripcionTipoCausa = limpiar(rec.DescripcionTipoCausa)

	if formato == FormatoPersonal {
		return d
	}

	// familiar and completo carry the family fields.
	d.Conyugue = limpiar(rec.Conyugue)
	d.CedulaConyugue = limpiar(rec.CedulaConyugue)
	d.Padre = limpiar(rec.Padre)
	d.Madre = limpiar(rec.Madre)

	return d
}

// ShapeFoto builds the photo section when the caller asked for it.
func ShapeFoto(rec *jce.Record, portalBaseURL string) *InformacionFoto {
	if !rec.TieneFotoDisponible() {
		return &InformacionFoto{
			Disponible: false,
			Mensaje:    "Foto no disponible para esta cédula",
		}
	}
	return &InformacionFoto{
		Disponible: true,
		URL:        fotoURL(portalBaseURL, rec.FotoURL),
	}
}

// nombreCompleto joins the name parts, skipping blanks, so a missing second
// surname never leaves a double space.
func nombreCompleto(rec *jce.Record) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{rec.Nombres, rec.Apellido1, rec.Apellido2} {
		if v := limpiar(p); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " ")
}

// limpiar trims a portal field and drops the literal "null" placeholder the
// portal uses for absent values.
func limpiar(v string) string {
	v = strings.TrimSpace(v)
	if strings.EqualFold(v, "null") {
		return ""
	}
	return v
}

// fotoURL resolves the portal's photo path, which can arrive absolute or
// relative, against the portal base URL.
func fotoURL(base, path string) string {
	path = strings.TrimSpace(path)
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(path, "/")
}

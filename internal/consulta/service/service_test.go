package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"jceconsulta/internal/cedula"
	"jceconsulta/internal/consulta/cache"
	"jceconsulta/internal/consulta/models"
	"jceconsulta/internal/jce"
	"jceconsulta/internal/platform/middleware/metadata"
	rlmodels "jceconsulta/internal/ratelimit/models"
	"jceconsulta/pkg/apierrors"
)

type fakeFetcher struct {
	calls   int
	results []fetchResult
	healthy bool
}

type fetchResult struct {
	rec *jce.Record
	err error
}

func (f *fakeFetcher) Fetch(ctx context.Context, ced cedula.Cedula) (*jce.Record, error) {
	f.calls++
	if len(f.results) == 0 {
		return nil, fmt.Errorf("%w: no scripted result", jce.ErrUnavailable)
	}
	res := f.results[0]
	if len(f.results) > 1 {
		f.results = f.results[1:]
	}
	return res.rec, res.err
}

func (f *fakeFetcher) Health(ctx context.Context) bool { return f.healthy }

type fakeAdmitter struct {
	result *rlmodels.Result
	err    error
	calls  int
}

func (f *fakeAdmitter) Admit(ctx context.Context, clientAddr string) (*rlmodels.Result, error) {
	f.calls++
	return f.result, f.err
}

func allowAll() *fakeAdmitter {
	return &fakeAdmitter{result: &rlmodels.Result{Allowed: true, Limit: 120, Remaining: 119}}
}

func citizenRecord() *jce.Record {
	return &jce.Record{
		Nombres:         "JUAN CARLOS",
		Apellido1:       "PEREZ",
		Apellido2:       "GOMEZ",
		FechaNacimiento: "1985-06-15",
		Sexo:            "M",
		EstadoCivil:     "C",
		Conyugue:        "MARIA RODRIGUEZ",
		FotoURL:         "/fotos/00113918205.jpg",
		Success:         "true",
	}
}

type ConsultaServiceSuite struct {
	suite.Suite
	ctx      context.Context
	logger   *slog.Logger
	fetcher  *fakeFetcher
	admitter *fakeAdmitter
	cache    *cache.MemoryStore
}

func TestConsultaServiceSuite(t *testing.T) {
	suite.Run(t, new(ConsultaServiceSuite))
}

func (s *ConsultaServiceSuite) SetupTest() {
	s.ctx = metadata.WithClientIP(context.Background(), "10.0.0.1")
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	s.fetcher = &fakeFetcher{healthy: true}
	s.admitter = allowAll()
	s.cache = cache.NewMemoryStore(30 * time.Minute)
}

func (s *ConsultaServiceSuite) newService() *Service {
	svc, err := New(s.fetcher, s.cache, s.admitter, "https://dataportal.jce.gob.do", s.logger)
	s.Require().NoError(err)
	return svc
}

func (s *ConsultaServiceSuite) TestConsultaBasica() {
	s.fetcher.results = []fetchResult{{rec: citizenRecord()}}
	svc := s.newService()

	resp, admission := svc.Consultar(s.ctx, models.ConsultaRequest{
		Cedula:  "001-1391820-5",
		Formato: "basico",
	})

	s.Require().NotNil(admission)
	s.True(resp.Exitosa)
	s.Equal(apierrors.CodeSuccess, resp.Codigo)
	s.Equal("00113918205", resp.CedulaConsultada)
	s.Require().NotNil(resp.Datos)
	s.Equal("JUAN CARLOS PEREZ GOMEZ", resp.Datos.NombreCompleto)
	s.Empty(resp.Datos.Conyugue)
	s.Nil(resp.Foto)
	s.Equal(1, s.fetcher.calls)
}

func (s *ConsultaServiceSuite) TestConsultaConFoto() {
	s.fetcher.results = []fetchResult{{rec: citizenRecord()}}
	svc := s.newService()

	resp, _ := svc.Consultar(s.ctx, models.ConsultaRequest{
		Cedula:      "00113918205",
		IncluirFoto: true,
	})

	s.Require().NotNil(resp.Foto)
	s.True(resp.Foto.Disponible)
	s.Equal("https://dataportal.jce.gob.do/fotos/00113918205.jpg", resp.Foto.URL)
}

func (s *ConsultaServiceSuite) TestCedulaInvalidaNeverReachesPortal() {
	svc := s.newService()

	resp, admission := svc.Consultar(s.ctx, models.ConsultaRequest{Cedula: "123"})

	s.Nil(admission)
	s.False(resp.Exitosa)
	s.Equal(apierrors.CodeCedulaInvalida, resp.Codigo)
	s.Equal(0, s.fetcher.calls)
	s.Equal(0, s.admitter.calls)
}

func (s *ConsultaServiceSuite) TestFormatoNoSoportado() {
	svc := s.newService()

	resp, _ := svc.Consultar(s.ctx, models.ConsultaRequest{
		Cedula:  "00113918205",
		Formato: "resumido",
	})

	s.Equal(apierrors.CodeFormatoNoSoportado, resp.Codigo)
	s.Equal(0, s.fetcher.calls)
	s.Equal(0, s.admitter.calls)
}

func (s *ConsultaServiceSuite) TestCacheHitSkipsPortal() {
	s.fetcher.results = []fetchResult{{rec: citizenRecord()}}
	svc := s.newService()

	req := models.ConsultaRequest{Cedula: "00113918205"}

	first, _ := svc.Consultar(s.ctx, req)
	s.True(first.Exitosa)
	s.Equal(1, s.fetcher.calls)

	second, _ := svc.Consultar(s.ctx, req)
	s.True(second.Exitosa)
	s.Equal(1, s.fetcher.calls)
}

func (s *ConsultaServiceSuite) TestCachedRecordReshapedPerRequest() {
	s.fetcher.results = []fetchResult{{rec: citizenRecord()}}
	svc := s.newService()

	completo, _ := svc.Consultar(s.ctx, models.ConsultaRequest{Cedula: "00113918205"})
	s.Equal("MARIA RODRIGUEZ", completo.Datos.Conyugue)

	basico, _ := svc.Consultar(s.ctx, models.ConsultaRequest{Cedula: "00113918205", Formato: "basico"})
	s.Empty(basico.Datos.Conyugue)
	s.Equal(1, s.fetcher.calls)
}

func (s *ConsultaServiceSuite) TestNoEncontradoNotCached() {
	s.fetcher.results = []fetchResult{
		{err: fmt.Errorf("%w: cedula 001-1391820-5", jce.ErrNotFound)},
		{rec: citizenRecord()},
	}
	svc := s.newService()

	req := models.ConsultaRequest{Cedula: "00113918205"}

	first, _ := svc.Consultar(s.ctx, req)
	s.False(first.Exitosa)
	s.Equal(apierrors.CodeCiudadanoNoEncontrado, first.Codigo)

	// The citizen appears later; a cached not-found would hide them.
	second, _ := svc.Consultar(s.ctx, req)
	s.True(second.Exitosa)
	s.Equal(2, s.fetcher.calls)
}

func (s *ConsultaServiceSuite) TestRateLimited() {
	s.admitter = &fakeAdmitter{result: &rlmodels.Result{
		Allowed:    false,
		RetryAfter: 1500 * time.Millisecond,
	}}
	svc := s.newService()

	resp, admission := svc.Consultar(s.ctx, models.ConsultaRequest{Cedula: "00113918205"})

	s.Require().NotNil(admission)
	s.Equal(apierrors.CodeRateLimitExcedido, resp.Codigo)
	// Rounded up so the client never retries early.
	s.Equal(int64(2), resp.RetryAfter)
	s.Equal(0, s.fetcher.calls)
}

func (s *ConsultaServiceSuite) TestAdmitterFailure() {
	s.admitter = &fakeAdmitter{err: errors.New("all stores down")}
	svc := s.newService()

	resp, _ := svc.Consultar(s.ctx, models.ConsultaRequest{Cedula: "00113918205"})

	s.Equal(apierrors.CodeErrorProcesamiento, resp.Codigo)
	s.Equal(0, s.fetcher.calls)
}

func (s *ConsultaServiceSuite) TestUpstreamFailureCodes() {
	tests := []struct {
		name string
		err  error
		want apierrors.Code
	}{
		{name: "unavailable", err: jce.ErrUnavailable, want: apierrors.CodeJCENoDisponible},
		{name: "timeout", err: jce.ErrTimeout, want: apierrors.CodeJCETimeout},
		{name: "bad response", err: jce.ErrBadResponse, want: apierrors.CodeJCERespuestaInvalida},
		{name: "unexpected", err: errors.New("boom"), want: apierrors.CodeErrorProcesamiento},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.SetupTest()
			s.fetcher.results = []fetchResult{{err: tt.err}}
			svc := s.newService()

			resp, _ := svc.Consultar(s.ctx, models.ConsultaRequest{Cedula: "00113918205"})
			s.False(resp.Exitosa)
			s.Equal(tt.want, resp.Codigo)
		})
	}
}

func (s *ConsultaServiceSuite) TestHealth() {
	svc := s.newService()
	h := svc.Health(s.ctx)
	s.True(h.Portal)
	s.True(h.Redis)

	s.fetcher.healthy = false
	h = svc.Health(s.ctx)
	s.False(h.Portal)
}

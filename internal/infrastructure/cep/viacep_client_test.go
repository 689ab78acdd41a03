package cep

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"xandr_checkout/internal/usecase/interfaces"
)

func TestViaCEPClient_Lookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ws/01310100/json/" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"cep":"01310-100","logradouro":"Avenida Paulista","bairro":"Bela Vista","localidade":"São Paulo","uf":"SP"}`))
	}))
	defer srv.Close()

	c := NewViaCEPClientWithBase(srv.URL, srv.Client())
	addr, err := c.Lookup(context.Background(), "01310100")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if addr.Street != "Avenida Paulista" || addr.Neighborhood != "Bela Vista" || addr.City != "São Paulo" || addr.State != "SP" {
		t.Fatalf("unexpected address: %+v", addr)
	}
}

func TestViaCEPClient_Lookup_NotFound(t *testing.T) {
	// ViaCEP has shipped both shapes of the error flag.
	for _, body := range []string{`{"erro": true}`, `{"erro": "true"}`} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(body))
		}))

		c := NewViaCEPClientWithBase(srv.URL, srv.Client())
		_, err := c.Lookup(context.Background(), "99999999")
		srv.Close()

		if !errors.Is(err, interfaces.ErrAddressNotFound) {
			t.Fatalf("expected ErrAddressNotFound for body %s, got %v", body, err)
		}
	}
}

func TestViaCEPClient_Lookup_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewViaCEPClientWithBase(srv.URL, srv.Client())
	if _, err := c.Lookup(context.Background(), "abc"); err == nil {
		t.Fatal("expected error on non-200")
	}
}

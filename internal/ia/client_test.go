package ia

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendDecodificaObjetoJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/IA/", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"text": "Hola",
			"intent": map[string]interface{}{
				"type":       "packages",
				"confidence": 0.9,
				"redirectTo": "show_packages",
			},
			"data": []map[string]interface{}{
				{"tipo": "paquete", "id": 9, "nombre": "Aventura Andina"},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	reply, err := client.Send(Request{Prompt: "hola"})

	require.NoError(t, err)
	assert.Equal(t, "Hola", reply.Text)
	require.NotNil(t, reply.Intent)
	assert.Equal(t, "packages", reply.Intent.Type)
	assert.Equal(t, 0.9, reply.Intent.Confidence)
	require.Len(t, reply.Data, 1)
}

func TestSendDecodificaObjetoSinTexto(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"text": "",
			"intent": map[string]interface{}{
				"type":       "products",
				"redirectTo": "show_products",
			},
			"data": []map[string]interface{}{
				{"tipo": "producto", "id": 10, "nombre": "Mochila Wayuu"},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	reply, err := client.Send(Request{Prompt: "hola"})

	require.NoError(t, err)
	// El objeto se respeta aunque el texto venga vacío
	assert.Empty(t, reply.Text)
	require.NotNil(t, reply.Intent)
	assert.Equal(t, "products", reply.Intent.Type)
	require.Len(t, reply.Data, 1)
}

func TestSendDecodificaStringJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode("Hola desde el backend")
	}))
	defer server.Close()

	client := NewClient(server.URL)
	reply, err := client.Send(Request{Prompt: "hola"})

	require.NoError(t, err)
	assert.Equal(t, "Hola desde el backend", reply.Text)
	assert.Nil(t, reply.Intent)
}

func TestSendDecodificaTextoPlano(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("  Hola en texto plano \n"))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	reply, err := client.Send(Request{Prompt: "hola"})

	require.NoError(t, err)
	assert.Equal(t, "Hola en texto plano", reply.Text)
}

func TestSendRegistradoIncluyeIdentidad(t *testing.T) {
	var gotBody map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/IA/registrado", r.URL.Path)
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]string{"text": "Hola"})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.SendRegistered(RegisteredRequest{
		Prompt: "hola",
		UserID: 7,
		Role:   "emprendedor",
	})

	require.NoError(t, err)
	assert.Equal(t, float64(7), gotBody["userId"])
	assert.Equal(t, "emprendedor", gotBody["role"])
}

func TestSendErrorDeEstado(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "servicio no disponible", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.Send(Request{Prompt: "hola"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestDownloadReport(t *testing.T) {
	pdf := []byte("%PDF-1.4 contenido")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/IA/reportes/descargar", r.URL.Path)
		assert.Equal(t, "7", r.URL.Query().Get("userId"))
		w.Write(pdf)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	got, err := client.DownloadReport(7)

	require.NoError(t, err)
	assert.Equal(t, pdf, got)
}

func TestDownloadReportErrorDeEstado(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.DownloadReport(7)

	assert.Error(t, err)
}

func TestNewClientRecortaBarraFinal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/IA/", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]string{"text": "ok"})
	}))
	defer server.Close()

	client := NewClient(server.URL + "/")
	_, err := client.Send(Request{Prompt: "hola"})
	require.NoError(t, err)
}

package ia

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Client es el cliente HTTP del backend de IA. El backend expone un endpoint
// anónimo (POST /IA/), uno autenticado (POST /IA/registrado) y la descarga
// del reporte en PDF (GET /IA/reportes/descargar).
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// HistoryEntry es el formato compacto de historial que espera el backend.
type HistoryEntry struct {
	Role    string `json:"role"` // "user" | "assistant"
	Content string `json:"content"`
}

type Request struct {
	Prompt  string         `json:"prompt"`
	History []HistoryEntry `json:"history"`
}

// RegisteredRequest agrega la identidad del usuario autenticado.
type RegisteredRequest struct {
	Prompt  string         `json:"prompt"`
	History []HistoryEntry `json:"history"`
	UserID  int            `json:"userId"`
	Role    string         `json:"role"` // cliente | emprendedor | administrador | observador
}

// Intent es la intención que el backend puede declarar junto a su respuesta.
type Intent struct {
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
	RedirectTo string  `json:"redirectTo"`
	Message    string  `json:"message"`
	ButtonText string  `json:"buttonText"`
}

type Reply struct {
	Text   string                   `json:"text"`
	Intent *Intent                  `json:"intent,omitempty"`
	Data   []map[string]interface{} `json:"data,omitempty"`
}

// Send envía un mensaje anónimo.
func (c *Client) Send(req Request) (*Reply, error) {
	return c.post("/IA/", req)
}

// SendRegistered envía un mensaje con identidad de usuario.
func (c *Client) SendRegistered(req RegisteredRequest) (*Reply, error) {
	return c.post("/IA/registrado", req)
}

func (c *Client) post(path string, payload interface{}) (*Reply, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("error serializando petición: %w", err)
	}

	resp, err := c.httpClient.Post(c.baseURL+path, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("error llamando al backend de IA: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error leyendo respuesta de IA: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("backend de IA respondió %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	return decodeReply(raw), nil
}

// decodeReply tolera las tres formas en que llega el cuerpo: un objeto JSON
// {text, intent?, data?}, un string JSON con el texto, o texto plano. Un
// objeto bien formado se respeta aunque su texto venga vacío: el intent y
// el payload estructurado no se descartan.
func decodeReply(raw []byte) *Reply {
	trimmed := bytes.TrimSpace(raw)

	if len(trimmed) > 0 && trimmed[0] == '{' {
		var reply Reply
		if err := json.Unmarshal(trimmed, &reply); err == nil {
			return &reply
		}
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return &Reply{Text: text}
	}

	return &Reply{Text: strings.TrimSpace(string(raw))}
}

// DownloadReport descarga el reporte PDF del usuario. El llamador decide el
// nombre de archivo con que se entrega (informe_experiencia.pdf).
func (c *Client) DownloadReport(userID int) ([]byte, error) {
	url := c.baseURL + "/IA/reportes/descargar?userId=" + strconv.Itoa(userID)

	resp, err := c.httpClient.Get(url)
	if err != nil {
		return nil, fmt.Errorf("error descargando reporte: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("descarga de reporte respondió %d", resp.StatusCode)
	}

	pdf, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error leyendo reporte: %w", err)
	}

	return pdf, nil
}

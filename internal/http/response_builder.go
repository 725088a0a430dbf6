// Package http provides HTTP server and handler implementations.
//
// This file maps pipeline errors to user-facing panels and writes JSON
// responses.
package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"fluxo/internal/core"
	"fluxo/internal/present"
)

// Panel kinds.
const (
	PanelMissingInput  = "missing_input"
	PanelMalformedData = "malformed_data"
	PanelBadRequest    = "bad_request"
	PanelNotFound      = "not_found"
	PanelInternal      = "internal"
)

// ErrorPanel is what the user sees instead of the dashboard.
type ErrorPanel struct {
	Status  int    `json:"-"`
	Kind    string `json:"error"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Path    string `json:"path,omitempty"`
	Hint    string `json:"hint,omitempty"`
}

// PanelFor classifies err. Only the two typed pipeline errors expose details;
// anything else gets a generic message.
func PanelFor(err error) ErrorPanel {
	var missing *core.MissingInputError
	if errors.As(err, &missing) {
		return ErrorPanel{
			Status:  http.StatusServiceUnavailable,
			Kind:    PanelMissingInput,
			Title:   "Arquivo de dados não encontrado",
			Message: "O arquivo esperado não existe.",
			Path:    missing.Path,
			Hint:    "Coloque o arquivo no caminho indicado e atualize a página.",
		}
	}
	var malformed *core.MalformedDataError
	if errors.As(err, &malformed) {
		return ErrorPanel{
			Status:  http.StatusUnprocessableEntity,
			Kind:    PanelMalformedData,
			Title:   "Dados inválidos",
			Message: malformed.Error(),
			Hint:    "Confira o cabeçalho da planilha exportada e atualize a página.",
		}
	}
	if errors.Is(err, present.ErrUnknownChart) {
		return ErrorPanel{
			Status:  http.StatusNotFound,
			Kind:    PanelNotFound,
			Title:   "Gráfico desconhecido",
			Message: err.Error(),
		}
	}
	return ErrorPanel{
		Status:  http.StatusInternalServerError,
		Kind:    PanelInternal,
		Title:   "Erro ao carregar os dados",
		Message: "Não foi possível montar o painel. Veja o log do servidor.",
	}
}

// BadRequestPanel reports an invalid query string.
func BadRequestPanel(err error) ErrorPanel {
	return ErrorPanel{
		Status:  http.StatusBadRequest,
		Kind:    PanelBadRequest,
		Title:   "Filtro inválido",
		Message: err.Error(),
	}
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writePanelJSON writes p as a JSON error body.
func writePanelJSON(w http.ResponseWriter, p ErrorPanel) {
	writeJSON(w, p.Status, p)
}

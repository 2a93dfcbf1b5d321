package mockbot

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Conversation stages walked by the embedded bot. The harness treats these as
// opaque strings; they only need to be stable across a run.
const (
	StageGreeting     = "greeting"
	StageIdentify     = "identify"
	StageMenu         = "menu"
	StageIntent       = "intent"
	StageDevice       = "device"
	StageDiagnose     = "diagnose"
	StageResolution   = "resolution"
	StageEscalate     = "escalate_confirm"
	StageContactEmail = "contact_email"
	StageContactPhone = "contact_phone"
	StageTicket       = "ticket_created"
)

type conversationState struct {
	Stage string
	Name  string
}

// Server is a deterministic stand-in for the flow bot service. It backs the
// package tests and the mock target mode, mirroring the two-endpoint surface
// of the real service.
type Server struct {
	mu       sync.Mutex
	sessions map[string]*conversationState
}

func NewServer() *Server {
	return &Server{sessions: make(map[string]*conversationState)}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/api/greeting", s.handleGreeting)
	r.Post("/api/chat", s.handleChat)
	return r
}

type chatRequest struct {
	SessionID string `json:"sessionId"`
	Text      string `json:"text"`
	ButtonID  string `json:"buttonId"`
}

func (s *Server) handleGreeting(w http.ResponseWriter, _ *http.Request) {
	id := uuid.NewString()

	s.mu.Lock()
	s.sessions[id] = &conversationState{Stage: StageGreeting}
	s.mu.Unlock()

	respondJSON(w, http.StatusOK, map[string]string{
		"sessionId": id,
		"stage":     StageGreeting,
		"reply":     "¡Hola! Soy el asistente de soporte. Elegí un idioma para continuar.",
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "body must be JSON")
		return
	}
	hasText := strings.TrimSpace(req.Text) != ""
	hasButton := strings.TrimSpace(req.ButtonID) != ""
	if hasText == hasButton {
		respondError(w, http.StatusBadRequest, "invalid_request", "exactly one of text or buttonId is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.sessions[strings.TrimSpace(req.SessionID)]
	if !ok {
		respondError(w, http.StatusNotFound, "unknown_session", "no conversation with that sessionId")
		return
	}

	stage, reply := advance(state, req)
	state.Stage = stage
	respondJSON(w, http.StatusOK, map[string]string{
		"stage": stage,
		"reply": reply,
	})
}

// advance applies one user turn to the scripted flow. Inputs that make no
// sense for the current stage keep the stage and nudge the user, like the
// real bot does.
func advance(state *conversationState, req chatRequest) (string, string) {
	text := strings.TrimSpace(req.Text)
	button := strings.TrimSpace(req.ButtonID)

	switch state.Stage {
	case StageGreeting:
		if strings.HasPrefix(button, "BTN_LANG_") {
			return StageIdentify, "Perfecto. ¿Cómo te llamás? Podés tocar el botón si preferís no decirlo."
		}
	case StageIdentify:
		if button == "BTN_NO_NAME" {
			return StageMenu, "Sin problema. ¿Necesitás ayuda con un problema o querés hacer una tarea?"
		}
		if text != "" {
			state.Name = text
			return StageMenu, "Un gusto, " + text + ". ¿Necesitás ayuda con un problema o querés hacer una tarea?"
		}
	case StageMenu:
		if button == "BTN_HELP" || button == "BTN_TASK" {
			return StageIntent, "Contame en una frase qué está pasando."
		}
	case StageIntent:
		if text != "" {
			return StageDevice, "Entiendo. ¿Qué equipo es? Marca y modelo me sirven."
		}
	case StageDevice:
		if button == "BTN_SOLVED" {
			return StageResolution, "¡Me alegro! Cualquier cosa volvé a escribirme."
		}
		if text != "" {
			return StageDiagnose, "Probemos algo: desconectá el equipo, esperá 30 segundos y volvé a enchufarlo. ¿Cómo fue?"
		}
	case StageDiagnose:
		switch button {
		case "BTN_TESTS_DONE", "BTN_SOLVED":
			return StageResolution, "Genial, quedó resuelto. Cualquier cosa volvé a escribirme."
		case "BTN_TESTS_FAIL":
			return StageEscalate, "Entiendo, no se pudo resolver. ¿Querés que genere un ticket para un técnico?"
		}
	case StageEscalate:
		switch button {
		case "BTN_YES":
			return StageContactEmail, "Perfecto. Pasame un email de contacto."
		case "BTN_NO":
			return StageResolution, "De acuerdo, quedamos acá. Cualquier cosa volvé a escribirme."
		}
	case StageContactEmail:
		if text != "" {
			return StageContactPhone, "Anotado. ¿Y un teléfono de contacto?"
		}
	case StageContactPhone:
		if text != "" {
			return StageTicket, "¡Listo! Generé el ticket. Un técnico te contacta por WhatsApp."
		}
	case StageResolution, StageTicket:
		return state.Stage, "La conversación ya terminó. Iniciá una nueva si necesitás algo más."
	}

	return state.Stage, "No entendí esa respuesta. Probá de nuevo."
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, code, detail string) {
	respondJSON(w, status, map[string]string{
		"error":  code,
		"detail": detail,
	})
}

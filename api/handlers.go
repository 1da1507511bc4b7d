package api

import (
	"net/http"

	"github.com/mips32sim/mips32/engine"
	"github.com/mips32sim/mips32/excn"
)

// reasonName renders a StopReason as a short identifier for JSON
// responses, since excn.StopReason carries no String method of its
// own (only the full Termination.String() does).
func reasonName(r excn.StopReason) string {
	switch r {
	case excn.StopProgramDroppedOff:
		return "dropped_off"
	case excn.StopProgramCrashed:
		return "crashed"
	case excn.StopProgramStopped:
		return "stopped"
	default:
		return "none"
	}
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req SessionCreateRequest
	if r.ContentLength > 0 {
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	cfg := engine.DefaultConfig()
	cfg.DelaySlots = req.DelaySlots
	if req.LoopLimit > 0 {
		cfg.LoopLimit = req.LoopLimit
	}

	session, err := s.sessions.CreateSession(cfg)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, SessionCreateResponse{SessionID: session.ID, CreatedAt: session.CreatedAt})
}

func (s *Server) handleDestroySession(w http.ResponseWriter, r *http.Request, sessionID string) {
	if err := s.sessions.DestroySession(sessionID); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetSessionStatus(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	resp := SessionStatusResponse{SessionID: sessionID, PC: session.PC()}
	if term := session.Termination(); term != nil {
		resp.Terminated = true
		resp.Reason = reasonName(term.Reason)
		resp.Detail = term.Detail
		resp.ExitCode = term.ExitCode
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLoadProgram(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	var req LoadProgramRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	prog, err := session.Load(req.Source, engine.DefaultConfig())
	if err != nil {
		writeJSON(w, http.StatusOK, LoadProgramResponse{Success: false, Error: err.Error()})
		return
	}

	symbols := make(map[string]uint32, len(prog.Global.All()))
	for name, sym := range prog.Global.All() {
		symbols[name] = sym.Address
	}

	var warnings []string
	for _, warn := range prog.Warnings.Warnings {
		warnings = append(warnings, warn.String())
	}

	writeJSON(w, http.StatusOK, LoadProgramResponse{
		Success: true, Warnings: warnings, Symbols: symbols, EntryPC: prog.EntryPC,
	})

	s.broadcaster.BroadcastState(sessionID, map[string]interface{}{"pc": prog.EntryPC})
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	term := session.Run()
	s.broadcaster.BroadcastState(sessionID, map[string]interface{}{"pc": session.PC()})
	if term != nil {
		s.broadcaster.BroadcastExecutionEvent(sessionID, reasonName(term.Reason), map[string]interface{}{"detail": term.Detail})
	}
	s.handleGetSessionStatus(w, r, sessionID)
}

func (s *Server) handleStep(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	term := session.Step()
	s.broadcaster.BroadcastState(sessionID, map[string]interface{}{"pc": session.PC()})
	if term != nil {
		s.broadcaster.BroadcastExecutionEvent(sessionID, reasonName(term.Reason), map[string]interface{}{"detail": term.Detail})
	}
	s.handleGetSessionStatus(w, r, sessionID)
}

func (s *Server) handleGetRegisters(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	cause, badVAddr, exceptionPC := session.CP0()
	writeJSON(w, http.StatusOK, RegistersResponse{
		PC: session.PC(), Integers: session.Registers(),
		Cause: cause, BadVAddr: badVAddr, ExceptPC: exceptionPC,
	})
}

func (s *Server) handleGetMemory(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, MemoryDumpResponse{Segments: session.MemoryDump()})
}

func (s *Server) handleGetConsoleOutput(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"output": session.ConsoleOutput()})
}

func (s *Server) handleSendStdin(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	var req StdinRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session.FeedStdin(req.Text)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetSymbols(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, session.Symbols())
}

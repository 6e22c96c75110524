package server

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nageshgg/DOC-QUERY/internal/chunker"
	"github.com/nageshgg/DOC-QUERY/internal/helper"
	"github.com/nageshgg/DOC-QUERY/internal/llm"
	"github.com/nageshgg/DOC-QUERY/internal/models"
	"github.com/nageshgg/DOC-QUERY/internal/parser"
	"github.com/nageshgg/DOC-QUERY/internal/rag"
)

const maxUploadBytes = 32 << 20 // 32 MiB

var allowedExtensions = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
	".txt":  true,
}

type uploadResponse struct {
	Message     string `json:"message"`
	Filename    string `json:"filename"`
	ChunksCount int    `json:"chunks_count"`
	ModelUsed   string `json:"model_used"`
}

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	Answer    string `json:"answer"`
	Question  string `json:"question"`
	Timestamp string `json:"timestamp"`
}

type historyResponse struct {
	History []models.ConversationEntry `json:"history"`
}

// handleUpload validates, stores, and processes a document, then swaps the
// bound session. Validation failures leave the previous session untouched; a
// processing failure removes the stored file before reporting.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file provided")
		return
	}
	defer file.Close()

	modelName := r.FormValue("model_name")
	if modelName == "" {
		modelName = llm.DefaultModel
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExtensions[ext] {
		writeError(w, http.StatusBadRequest, "File type not supported. Allowed types: .pdf, .doc, .docx, .txt")
		return
	}
	if !llm.IsAllowed(modelName) {
		writeError(w, http.StatusBadRequest, "Model not supported. Allowed models: "+strings.Join(llm.AllowedModels(), ", "))
		return
	}

	storedPath, err := s.storeUpload(file, ext)
	if err != nil {
		log.Error().Err(err).Msg("error saving uploaded file")
		writeError(w, http.StatusInternalServerError, "Error processing file: "+err.Error())
		return
	}
	log.Info().Str("file", storedPath).Str("model", modelName).Msg("file saved, processing document")

	text, err := parser.ExtractText(storedPath)
	if err != nil {
		s.discardUpload(storedPath)
		log.Error().Err(err).Str("file", storedPath).Msg("error processing file")
		writeError(w, http.StatusInternalServerError, "Error processing file: "+err.Error())
		return
	}

	chunks, err := chunker.Split(text, s.cfg.RAG.ChunkSize, s.cfg.RAG.ChunkOverlap)
	if err != nil {
		s.discardUpload(storedPath)
		log.Error().Err(err).Str("file", storedPath).Msg("error processing file")
		writeError(w, http.StatusInternalServerError, "Error processing file: "+err.Error())
		return
	}
	log.Info().Int("chunks", len(chunks)).Msg("document processed")

	// Model loading is slow and blocking; it happens here, once per upload.
	binding := llm.Load(r.Context(), s.cfg.LLM.BaseURL, modelName)
	engine := rag.NewEngine(chunks, modelName, binding, s.cfg.RAG.TopK)

	s.mu.Lock()
	s.engine = engine
	s.history = nil
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, uploadResponse{
		Message:     "File uploaded and processed successfully",
		Filename:    header.Filename,
		ChunksCount: engine.ChunkCount(),
		ModelUsed:   modelName,
	})
}

// storeUpload writes the uploaded content under the uploads directory with a
// random name that keeps the original extension.
func (s *Server) storeUpload(file io.Reader, ext string) (string, error) {
	if err := helper.CreateFolder(s.cfg.Uploads.Dir); err != nil {
		return "", err
	}
	id, err := helper.GenerateUUID()
	if err != nil {
		return "", err
	}
	path := filepath.Join(s.cfg.Uploads.Dir, id+ext)
	out, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, file); err != nil {
		out.Close()
		s.discardUpload(path)
		return "", err
	}
	return path, out.Close()
}

func (s *Server) discardUpload(path string) {
	if err := os.Remove(path); err != nil {
		log.Warn().Err(err).Str("file", path).Msg("could not remove uploaded file")
	}
}

// handleAsk answers one question against the bound document. The session lock
// is held for the whole call: generation is blocking and the bound model is
// not assumed reentrant.
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := decodeJSON(r, &req, 1<<20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.engine == nil {
		writeError(w, http.StatusBadRequest, "No document uploaded. Please upload a document first.")
		return
	}

	answer, err := s.engine.Answer(r.Context(), req.Question)
	if err != nil {
		log.Error().Err(err).Msg("error generating answer")
		writeError(w, http.StatusInternalServerError, "Error generating answer: "+err.Error())
		return
	}

	entry := models.ConversationEntry{
		Question:  req.Question,
		Answer:    answer,
		Timestamp: time.Now().Format(time.RFC3339),
	}
	s.history = append(s.history, entry)

	writeJSON(w, http.StatusOK, askResponse{
		Answer:    entry.Answer,
		Question:  entry.Question,
		Timestamp: entry.Timestamp,
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	history := make([]models.ConversationEntry, len(s.history))
	copy(history, s.history)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, historyResponse{History: history})
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]models.ModelInfo{"models": llm.Catalog()})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"message": "Document Query API is running",
	})
}

func (s *Server) handleTest(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "Backend is working!"})
}

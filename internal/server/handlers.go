package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/inodb/vibe-pgx/internal/genotype"
	"github.com/inodb/vibe-pgx/internal/input"
	"github.com/inodb/vibe-pgx/internal/metrics"
	"github.com/inodb/vibe-pgx/internal/output"
	"github.com/inodb/vibe-pgx/internal/pgx"
)

// uploadField is the multipart form field holding the genomic file.
const uploadField = "file"

// HealthDoc is the health check response.
type HealthDoc struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
	Drugs  int    `json:"drugs"`
	Genes  int    `json:"genes"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	name, data, err := readUpload(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			metrics.RecordAnalysis("", metrics.OutcomeError, 0)
			respondWithError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload too large, maximum allowed size is %d bytes", tooLarge.Limit))
			return
		}
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	rep, err := s.analyzer.Analyze(name, bytes.NewReader(data))
	if err != nil {
		var fe *genotype.FormatError
		switch {
		case errors.As(err, &fe):
			metrics.RecordAnalysis("", metrics.OutcomeFormatError, 0)
			respondWithError(w, http.StatusUnprocessableEntity, fe.Error())
		case errors.Is(err, input.ErrTooLarge):
			metrics.RecordAnalysis("", metrics.OutcomeError, 0)
			respondWithError(w, http.StatusRequestEntityTooLarge, err.Error())
		default:
			metrics.RecordAnalysis("", metrics.OutcomeError, 0)
			s.logger.Error("analysis failed", zap.String("name", name), zap.Error(err))
			respondWithError(w, http.StatusInternalServerError, "analysis failed")
		}
		return
	}

	outcome := metrics.OutcomeOK
	if rep.Matched == 0 {
		outcome = metrics.OutcomeNoMatch
	}
	metrics.RecordAnalysis(string(rep.Format), outcome, rep.MarkerCount)

	respondWithJSON(w, http.StatusOK, output.NewReportDoc(rep))
}

// readUpload returns the uploaded file name and content. Multipart bodies
// must carry the file in the "file" field; any other body is taken as the
// file itself, named by the "name" query parameter.
func readUpload(r *http.Request) (string, []byte, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if !strings.HasPrefix(mediaType, "multipart/") {
		name := r.URL.Query().Get("name")
		if name == "" {
			name = "upload"
		}
		data, err := io.ReadAll(r.Body)
		if err != nil {
			return "", nil, fmt.Errorf("read body: %w", err)
		}
		if len(data) == 0 {
			return "", nil, errors.New("empty request body")
		}
		return name, data, nil
	}

	mr, err := r.MultipartReader()
	if err != nil {
		return "", nil, fmt.Errorf("read multipart body: %w", err)
	}
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			return "", nil, fmt.Errorf("missing %q form field", uploadField)
		}
		if err != nil {
			return "", nil, fmt.Errorf("read multipart body: %w", err)
		}
		if part.FormName() != uploadField {
			part.Close()
			continue
		}
		data, err := io.ReadAll(part)
		part.Close()
		if err != nil {
			return "", nil, fmt.Errorf("read %q form field: %w", uploadField, err)
		}
		name := part.FileName()
		if name == "" {
			name = "upload"
		}
		return name, data, nil
	}
}

func (s *Server) handleDrugs(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, output.NewDrugDocs(s.analyzer.Engine().Drugs()))
}

func (s *Server) handleDrug(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	d, ok := pgx.DrugByName(name)
	if !ok {
		respondWithError(w, http.StatusNotFound, fmt.Sprintf("unknown drug %q", name))
		return
	}
	respondWithJSON(w, http.StatusOK, output.NewDrugDoc(d))
}

func (s *Server) handleGenes(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, output.NewGeneDocs())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, HealthDoc{
		Status: "healthy",
		Uptime: time.Since(s.started).Round(time.Second).String(),
		Drugs:  len(s.analyzer.Engine().Drugs()),
		Genes:  len(pgx.Genes),
	})
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	w.Write(data)
}

func respondWithError(w http.ResponseWriter, code int, msg string) {
	respondWithJSON(w, code, map[string]string{"error": msg})
}

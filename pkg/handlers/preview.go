package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-ingest/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-ingest/pkg/delimited"
	"github.com/ekaya-inc/ekaya-ingest/pkg/jsonutil"
	"github.com/ekaya-inc/ekaya-ingest/pkg/services"
)

// PreviewRequest is the JSON form of a preview upload. Exactly one of Text
// or ContentBase64 carries the file; workbooks must use ContentBase64.
type PreviewRequest struct {
	Text          string          `json:"text"`
	ContentBase64 string          `json:"contentBase64"`
	Format        string          `json:"format"`
	Name          string          `json:"name"`
	Filename      string          `json:"filename"`
	MimeType      string          `json:"mimeType"`
	SheetName     string          `json:"sheetName"`
	HasHeader     json.RawMessage `json:"hasHeader"`
	Delimiter     string          `json:"delimiter"`
	MaxRows       json.RawMessage `json:"maxRows"`
	MaxSampleRows json.RawMessage `json:"maxSampleRows"`
}

// ImportHandler serves the import preview API.
type ImportHandler struct {
	service        services.PreviewService
	maxUploadBytes int64
	logger         *zap.Logger
}

// NewImportHandler creates an import handler. Request bodies larger than
// maxUploadBytes are rejected.
func NewImportHandler(service services.PreviewService, maxUploadBytes int64, logger *zap.Logger) *ImportHandler {
	return &ImportHandler{
		service:        service,
		maxUploadBytes: maxUploadBytes,
		logger:         logger.Named("import-handler"),
	}
}

// RegisterRoutes registers the import handler's routes on the given mux.
func (h *ImportHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/import/preview", h.Preview)
}

// Preview handles POST /api/import/preview. The body is one of:
//   - multipart/form-data with a "file" part and option fields
//   - application/json matching PreviewRequest
//   - the raw file, with options in the query string
func (h *ImportHandler) Preview(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	data, opts, err := h.readUpload(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	result, err := h.service.Preview(r.Context(), data, opts)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: result}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// requestError is a malformed request option.
type requestError struct {
	msg string
}

func (e *requestError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return &requestError{msg: fmt.Sprintf(format, args...)}
}

func (h *ImportHandler) readUpload(r *http.Request) ([]byte, services.PreviewOptions, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "multipart/form-data":
		return h.readMultipart(r)
	case "application/json":
		return readJSON(r)
	default:
		return readRaw(r, mediaType)
	}
}

func (h *ImportHandler) readMultipart(r *http.Request) ([]byte, services.PreviewOptions, error) {
	var opts services.PreviewOptions
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		return nil, opts, bodyError(err)
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, opts, badRequest("multipart upload requires a \"file\" field")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, opts, bodyError(err)
	}

	opts, err = optionsFromValues(r.FormValue)
	if err != nil {
		return nil, opts, err
	}
	opts.Filename = header.Filename
	if opts.MimeType == "" {
		opts.MimeType = header.Header.Get("Content-Type")
	}
	return data, opts, nil
}

func readJSON(r *http.Request) ([]byte, services.PreviewOptions, error) {
	var opts services.PreviewOptions
	var req PreviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if tooLarge := bodyError(err); errors.Is(tooLarge, apperrors.ErrInputTooLarge) {
			return nil, opts, tooLarge
		}
		return nil, opts, badRequest("invalid JSON body")
	}

	data := []byte(req.Text)
	if req.ContentBase64 != "" {
		if req.Text != "" {
			return nil, opts, badRequest("text and contentBase64 are mutually exclusive")
		}
		decoded, err := base64.StdEncoding.DecodeString(req.ContentBase64)
		if err != nil {
			return nil, opts, badRequest("contentBase64 is not valid base64")
		}
		data = decoded
	}

	hasHeader, err := jsonutil.FlexibleStringValue(req.HasHeader)
	if err != nil {
		return nil, opts, badRequest("invalid hasHeader: %v", err)
	}
	maxRows, err := jsonutil.FlexibleIntValue(req.MaxRows)
	if err != nil {
		return nil, opts, badRequest("invalid maxRows: %v", err)
	}
	maxSampleRows, err := jsonutil.FlexibleIntValue(req.MaxSampleRows)
	if err != nil {
		return nil, opts, badRequest("invalid maxSampleRows: %v", err)
	}
	mode, err := delimited.ParseHeaderMode(hasHeader)
	if err != nil {
		return nil, opts, badRequest("invalid hasHeader: %v", err)
	}

	opts = services.PreviewOptions{
		Format:        req.Format,
		Name:          req.Name,
		Filename:      req.Filename,
		MimeType:      req.MimeType,
		SheetName:     req.SheetName,
		HasHeader:     mode,
		Delimiter:     req.Delimiter,
		MaxRows:       maxRows,
		MaxSampleRows: maxSampleRows,
	}
	return data, opts, nil
}

func readRaw(r *http.Request, mediaType string) ([]byte, services.PreviewOptions, error) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, services.PreviewOptions{}, bodyError(err)
	}
	query := r.URL.Query()
	opts, err := optionsFromValues(query.Get)
	if err != nil {
		return nil, opts, err
	}
	opts.Filename = query.Get("filename")
	if opts.MimeType == "" && mediaType != "application/octet-stream" {
		opts.MimeType = mediaType
	}
	return data, opts, nil
}

// optionsFromValues reads preview options from form fields or query
// parameters.
func optionsFromValues(get func(string) string) (services.PreviewOptions, error) {
	opts := services.PreviewOptions{
		Format:    get("format"),
		Name:      get("name"),
		MimeType:  get("mimeType"),
		SheetName: get("sheetName"),
		Delimiter: get("delimiter"),
	}

	mode, err := delimited.ParseHeaderMode(get("hasHeader"))
	if err != nil {
		return opts, badRequest("invalid hasHeader: %v", err)
	}
	opts.HasHeader = mode

	for field, dst := range map[string]*int{
		"maxRows":       &opts.MaxRows,
		"maxSampleRows": &opts.MaxSampleRows,
	} {
		v := strings.TrimSpace(get(field))
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, badRequest("invalid %s: %q is not an integer", field, v)
		}
		*dst = n
	}
	return opts, nil
}

// bodyError maps body read failures, turning an exceeded size limit into
// ErrInputTooLarge.
func bodyError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return fmt.Errorf("%w: limit is %d bytes", apperrors.ErrInputTooLarge, maxErr.Limit)
	}
	return badRequest("failed to read request body")
}

func (h *ImportHandler) writeError(w http.ResponseWriter, err error) {
	status, code := http.StatusInternalServerError, "internal_error"
	message := "Failed to preview import"

	var reqErr *requestError
	switch {
	case errors.As(err, &reqErr):
		status, code, message = http.StatusBadRequest, "invalid_request", reqErr.msg
	case errors.Is(err, apperrors.ErrEmptyInput):
		status, code, message = http.StatusBadRequest, "empty_input", "Upload is empty"
	case errors.Is(err, apperrors.ErrUnsupportedFormat):
		status, code, message = http.StatusBadRequest, "unsupported_format", err.Error()
	case errors.Is(err, apperrors.ErrInputTooLarge):
		status, code, message = http.StatusRequestEntityTooLarge, "input_too_large", err.Error()
	case errors.Is(err, apperrors.ErrWorkbookRead):
		status, code, message = http.StatusUnprocessableEntity, "unreadable_workbook", "The workbook could not be read"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status, code, message = http.StatusServiceUnavailable, "cancelled", "Request was cancelled"
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("Preview failed", zap.Error(err))
	} else {
		h.logger.Debug("Preview rejected", zap.String("code", code), zap.Error(err))
	}

	if err := ErrorResponse(w, status, code, message); err != nil {
		h.logger.Error("Failed to write error response", zap.Error(err))
	}
}

package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/franciscosanchezn/gin-cookbook-api/internal/middleware"
	"github.com/franciscosanchezn/gin-cookbook-api/internal/services"
	"github.com/franciscosanchezn/gin-cookbook-api/internal/validation"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// maxFormMemory is the part of a multipart body kept in memory; the rest spills to disk.
const maxFormMemory = 8 << 20

var stepFieldPattern = regexp.MustCompile(`^steps\[(\d+)\]\[description\]$`)

// errMalformedBody is returned for request bodies that cannot be decoded at all.
var errMalformedBody = errors.New("malformed request body")

// isForm reports whether the request carries multipart or urlencoded form data.
func isForm(c *gin.Context) bool {
	switch c.ContentType() {
	case binding.MIMEMultipartPOSTForm, binding.MIMEPOSTForm:
		return true
	}
	return false
}

// bindInput fills in from a JSON or form body. An empty body leaves in untouched
// so that field validation reports what is missing.
func bindInput(c *gin.Context, in interface{}) error {
	var err error
	if isForm(c) {
		err = c.ShouldBindWith(in, binding.Form)
	} else {
		err = c.ShouldBindJSON(in)
	}
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return fmt.Errorf("%w: %v", errMalformedBody, err)
}

// decodeJSON reads the raw JSON body into each target. An empty body is allowed.
func decodeJSON(c *gin.Context, targets ...interface{}) error {
	if c.Request.Body == nil {
		return nil
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", errMalformedBody, err)
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil
	}
	for _, target := range targets {
		if err := json.Unmarshal(body, target); err != nil {
			return fmt.Errorf("%w: %v", errMalformedBody, err)
		}
	}
	return nil
}

// formString returns a pointer to the form value when the field was sent.
func formString(c *gin.Context, key string) *string {
	if value, ok := c.GetPostForm(key); ok {
		return &value
	}
	return nil
}

// formInt parses an optional integer form field, recording a message when it is not a number.
func formInt(c *gin.Context, key string, errs validation.Errors) *int {
	raw, ok := c.GetPostForm(key)
	if !ok {
		return nil
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		errs.Add(key, fmt.Sprintf("The %s must be an integer.", strings.ReplaceAll(key, "_", " ")))
		return nil
	}
	return &value
}

// parseForm parses a form body up front so a broken body is reported instead of
// reading as missing fields.
func parseForm(c *gin.Context) error {
	err := c.Request.ParseMultipartForm(maxFormMemory)
	if err == nil || errors.Is(err, http.ErrNotMultipart) {
		return nil
	}
	return fmt.Errorf("%w: %v", errMalformedBody, err)
}

// formSteps collects steps[i][description] fields ordered by i. It returns nil
// when no step field was sent. The form must already be parsed.
func formSteps(c *gin.Context, errs validation.Errors) []services.StepInput {
	type indexed struct {
		index int
		desc  string
	}
	var found []indexed
	for key, values := range c.Request.PostForm {
		match := stepFieldPattern.FindStringSubmatch(key)
		if match == nil || len(values) == 0 {
			continue
		}
		index, err := strconv.Atoi(match[1])
		if err != nil {
			errs.Add("steps."+match[1]+".description", "The step index is out of range.")
			continue
		}
		found = append(found, indexed{index: index, desc: values[0]})
	}
	if len(found) == 0 {
		return nil
	}

	sort.Slice(found, func(i, j int) bool { return found[i].index < found[j].index })
	steps := make([]services.StepInput, 0, len(found))
	for _, f := range found {
		steps = append(steps, services.StepInput{Description: f.desc})
	}
	return steps
}

// formImage reads the uploaded file of field key, at most maxBytes+1 bytes of it.
func formImage(c *gin.Context, key string, maxBytes int64) (*services.ImageUpload, error) {
	header, err := c.FormFile(key)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformedBody, err)
	}

	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	return &services.ImageUpload{Filename: header.Filename, Size: header.Size, Data: data}, nil
}

// isTruthy accepts the usual form encodings of a boolean true.
func isTruthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

// parseID reads a positive integer path parameter.
func parseID(c *gin.Context, param string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// viewerID returns the authenticated caller, or nil for guests.
func viewerID(c *gin.Context) *uint {
	if id, ok := middleware.CurrentUserID(c); ok {
		return &id
	}
	return nil
}

// mustUserID returns the caller set by middleware.RequireAuth.
func mustUserID(c *gin.Context) uint {
	id, _ := middleware.CurrentUserID(c)
	return id
}

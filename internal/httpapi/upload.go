package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/arawak/showroom/internal/media"
)

const (
	// formOverhead is the allowance for multipart framing and text fields
	// on top of the file limit.
	formOverhead  = 1 << 20
	maxFieldBytes = 64 << 10
)

type uploadForm struct {
	values map[string]string
	file   *media.Upload
}

func (f *uploadForm) value(keys ...string) string {
	for _, k := range keys {
		if v, ok := f.values[k]; ok {
			return v
		}
	}
	return ""
}

// flag accepts the truthy spellings browsers and form libraries send.
func (f *uploadForm) flag(keys ...string) bool {
	v := strings.ToLower(strings.TrimSpace(f.value(keys...)))
	if v == "on" || v == "yes" {
		return true
	}
	b, _ := strconv.ParseBool(v)
	return b
}

// readUpload streams a multipart body. The part named field is staged in
// category c, other file parts are rejected, and text parts are kept up to
// maxFieldBytes each. Requests that are not multipart are read as JSON or
// url-encoded forms and carry no file. The caller owns the staged upload.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request, field string, c media.Category, limit int64) (*uploadForm, error) {
	r.Body = http.MaxBytesReader(w, r.Body, limit+formOverhead)
	form := &uploadForm{values: map[string]string{}}

	mr, err := r.MultipartReader()
	if errors.Is(err, http.ErrNotMultipart) {
		return form, readPlainForm(r, form)
	}
	if err != nil {
		return nil, badRequest("failed to parse multipart: %v", err)
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			form.file.Discard()
			return nil, multipartError(err)
		}
		name := part.FormName()

		if part.FileName() == "" {
			data, err := io.ReadAll(io.LimitReader(part, maxFieldBytes+1))
			part.Close()
			if err != nil {
				form.file.Discard()
				return nil, multipartError(err)
			}
			if len(data) > maxFieldBytes {
				form.file.Discard()
				return nil, badRequest("field %s is too long", name)
			}
			if _, seen := form.values[name]; !seen {
				form.values[name] = string(data)
			}
			continue
		}

		if name != field || form.file != nil {
			part.Close()
			form.file.Discard()
			return nil, badRequest("unexpected file field %q", name)
		}
		if err := media.CheckContentType(part.Header.Get("Content-Type"), c); err != nil {
			part.Close()
			return nil, err
		}
		up, err := s.assets.Stage(r.Context(), part, part.FileName(), c, limit)
		part.Close()
		if err != nil {
			return nil, err
		}
		form.file = up
	}
	return form, nil
}

func readPlainForm(r *http.Request, form *uploadForm) error {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/json" {
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil && err != io.EOF {
			return multipartError(fmt.Errorf("invalid JSON body: %w", err))
		}
		for k, v := range payload {
			switch t := v.(type) {
			case string:
				form.values[k] = t
			case nil:
			default:
				form.values[k] = fmt.Sprint(t)
			}
		}
		return nil
	}
	if err := r.ParseForm(); err != nil {
		return multipartError(err)
	}
	for k, vals := range r.PostForm {
		if len(vals) > 0 {
			form.values[k] = vals[0]
		}
	}
	return nil
}

func multipartError(err error) error {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return media.ErrTooLarge
	}
	return badRequest("%v", err)
}

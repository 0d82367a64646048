package httpapi

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// ServerInterface lists the handlers that take a record id from the path.
type ServerInterface interface {
	GetDesign(w http.ResponseWriter, r *http.Request, id int64)
	UpdateDesign(w http.ResponseWriter, r *http.Request, id int64)
	DeleteDesign(w http.ResponseWriter, r *http.Request, id int64)
	GetVideo(w http.ResponseWriter, r *http.Request, id int64)
	DeleteVideo(w http.ResponseWriter, r *http.Request, id int64)
}

// ServerInterfaceWrapper binds path parameters before calling the handler.
type ServerInterfaceWrapper struct {
	Handler          ServerInterface
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

func (siw *ServerInterfaceWrapper) bindID(w http.ResponseWriter, r *http.Request, next func(http.ResponseWriter, *http.Request, int64)) {
	var id int64
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.ErrorHandlerFunc(w, r, fmt.Errorf("Invalid format for parameter id: %w", err))
		return
	}
	if id <= 0 {
		siw.ErrorHandlerFunc(w, r, fmt.Errorf("Invalid format for parameter id: must be positive"))
		return
	}
	next(w, r, id)
}

func (siw *ServerInterfaceWrapper) GetDesign(w http.ResponseWriter, r *http.Request) {
	siw.bindID(w, r, siw.Handler.GetDesign)
}

func (siw *ServerInterfaceWrapper) UpdateDesign(w http.ResponseWriter, r *http.Request) {
	siw.bindID(w, r, siw.Handler.UpdateDesign)
}

func (siw *ServerInterfaceWrapper) DeleteDesign(w http.ResponseWriter, r *http.Request) {
	siw.bindID(w, r, siw.Handler.DeleteDesign)
}

func (siw *ServerInterfaceWrapper) GetVideo(w http.ResponseWriter, r *http.Request) {
	siw.bindID(w, r, siw.Handler.GetVideo)
}

func (siw *ServerInterfaceWrapper) DeleteVideo(w http.ResponseWriter, r *http.Request) {
	siw.bindID(w, r, siw.Handler.DeleteVideo)
}

package server

import "github.com/gorilla/mux"

// Registrar is the common interface for attaching a service's routes to
// the router.
type Registrar interface {
	Register(r *mux.Router)
}

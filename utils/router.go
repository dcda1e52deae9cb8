package utils

import "github.com/gorilla/mux"

// NewRouter constructs the application's router with the options every
// mounted surface expects.
func NewRouter() *mux.Router {
	r := mux.NewRouter()
	r.SkipClean(true)
	r.UseEncodedPath()
	return r
}

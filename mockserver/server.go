package mockserver

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/hisabi-admin/internal/config"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// Server is an in-memory stand-in for the Hisabi admin backend.
type Server struct {
	env       string
	mux       *http.ServeMux
	routes    []string
	config    config.MockConfig
	store     *Store
	tokens    *TokenIssuer
	adminUser string
	adminHash []byte
}

func New(env string, cfg config.MockConfig, store *Store) (*Server, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.GetAdminPassword()), bcrypt.MinCost)
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to hash admin password: %w", err)
	}

	s := &Server{
		env:       env,
		mux:       http.NewServeMux(),
		config:    cfg,
		store:     store,
		tokens:    NewTokenIssuer(cfg.GetJWTSecret(), cfg.GetTokenExpiry()),
		adminUser: cfg.GetAdminUsername(),
		adminHash: hash,
	}
	s.initRoutes()
	s.logRoutes()
	return s, nil
}

func (s *Server) Store() *Store {
	return s.store
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return
	}
	for _, route := range s.routes {
		method, path, found := strings.Cut(route, " ")
		if !found {
			method, path = "", route
		}
		log.Info().Msgf("[%s] %s", colourMethod(method), path)
	}
}

package handlers

import (
	"github.com/rs/zerolog"

	"github.com/harentsoaR/lessons-api/internal/store"
	"github.com/harentsoaR/lessons-api/internal/utils"
)

// Options names the fixed collections used by the domain handlers.
type Options struct {
	Lessons    string
	Orders     string
	Users      string
	BcryptCost int
}

// Handler carries the dependencies shared by every route. The store
// gateway is constructed once in main and injected here.
type Handler struct {
	Store  store.Gateway
	Tokens *utils.TokenIssuer
	Log    zerolog.Logger

	opts Options

	// dummyHash is compared against when signin finds no user, so both
	// failure paths cost one bcrypt comparison.
	dummyHash string
}

func NewHandler(st store.Gateway, tokens *utils.TokenIssuer, opts Options, log zerolog.Logger) *Handler {
	dummy, err := utils.HashPassword("lessons-api-dummy-password", opts.BcryptCost)
	if err != nil {
		log.Warn().Err(err).Msg("could not prepare dummy password hash")
	}

	return &Handler{
		Store:     st,
		Tokens:    tokens,
		Log:       log,
		opts:      opts,
		dummyHash: dummy,
	}
}

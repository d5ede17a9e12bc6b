package mode

import (
	"context"
	"log/slog"
	"sync"

	"scriptchat/internal/config"
	"scriptchat/internal/domain"
)

// Deps supplies the factories the controller chooses between. Keeping
// them injectable lets tests exercise every fallback branch without
// touching real services.
type Deps struct {
	NewAuthenticator func(ctx context.Context, fb *config.FirebaseConfig) (domain.Authenticator, error)
	NewPersistent    func(ctx context.Context, fb *config.FirebaseConfig) (domain.Strategy, error)
	NewDemo          func() domain.Strategy

	// AuthToken, when set, selects token sign-in over anonymous.
	AuthToken string
}

// Result is the outcome of the one-shot mode decision.
type Result struct {
	Mode     domain.AppMode
	Identity domain.Identity
	Strategy domain.Strategy
}

// Controller decides the application mode exactly once per process.
// Missing configuration, an invalid configuration, or an auth failure
// all commit the process to demo mode for the rest of the run.
type Controller struct {
	deps Deps
	log  *slog.Logger

	once  sync.Once
	ready chan struct{}
	res   Result
}

func NewController(deps Deps, log *slog.Logger) *Controller {
	return &Controller{
		deps:  deps,
		log:   log,
		ready: make(chan struct{}),
	}
}

// Ready is closed exactly once, when initialization has completed either
// successfully or via fallback. Session operations must not start before
// then.
func (c *Controller) Ready() <-chan struct{} {
	return c.ready
}

// Initialize runs the mode decision. Repeated calls return the first
// result; there is no mid-run mode switch beyond the startup fallback.
func (c *Controller) Initialize(ctx context.Context, fb *config.FirebaseConfig) Result {
	c.once.Do(func() {
		defer close(c.ready)
		c.res = c.decide(ctx, fb)
	})
	return c.res
}

func (c *Controller) decide(ctx context.Context, fb *config.FirebaseConfig) Result {
	if fb == nil || fb.ProjectID == "" {
		c.log.Info("no usable remote configuration, running in demo mode")
		return c.demo()
	}

	authn, err := c.deps.NewAuthenticator(ctx, fb)
	if err != nil {
		c.log.Warn("authenticator unavailable, falling back to demo mode", "error", err)
		return c.demo()
	}

	var identity domain.Identity
	if c.deps.AuthToken != "" {
		identity, err = authn.SignInWithToken(ctx, c.deps.AuthToken)
	} else {
		identity, err = authn.SignInAnonymously(ctx)
	}
	if err != nil {
		c.log.Warn("sign-in failed, falling back to demo mode", "error", err)
		return c.demo()
	}

	strategy, err := c.deps.NewPersistent(ctx, fb)
	if err != nil {
		c.log.Warn("persistent store unavailable, falling back to demo mode", "error", err)
		return c.demo()
	}

	c.log.Info("running in persistent mode",
		"project_id", fb.ProjectID,
		"user_id", identity.UserID,
		"anonymous", identity.Anonymous,
	)
	return Result{
		Mode:     domain.ModePersistent,
		Identity: identity,
		Strategy: strategy,
	}
}

func (c *Controller) demo() Result {
	return Result{
		Mode:     domain.ModeDemo,
		Strategy: c.deps.NewDemo(),
	}
}

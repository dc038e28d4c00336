package session

// RenderState is which of the three top-level presentations the host UI
// should show. Exactly one render state exists per Status.
type RenderState string

const (
	RenderLoading         RenderState = "loading"
	RenderAuthenticated   RenderState = "authenticated"
	RenderUnauthenticated RenderState = "unauthenticated"
)

// Select is the pure navigation decision: session state in, render state out.
func Select(state State) RenderState {
	switch state.Status {
	case StatusAuthenticated:
		return RenderAuthenticated
	case StatusUnauthenticated:
		return RenderUnauthenticated
	default:
		return RenderLoading
	}
}

// Renderer presents one of the three trees. Implemented by the host UI.
type Renderer func(RenderState, State)

// Gate binds a Renderer to a Store: every store mutation re-selects and
// re-renders synchronously, so the UI can never keep showing a stale tree
// after a login or logout lands.
type Gate struct {
	store       *Store
	render      Renderer
	unsubscribe func()
}

func NewGate(store *Store, render Renderer) *Gate {
	return &Gate{store: store, render: render}
}

// Run renders the current state once, then follows every change until Stop.
func (g *Gate) Run() {
	g.unsubscribe = g.store.Subscribe(func(state State) {
		g.render(Select(state), state)
	})
	state := g.store.Read()
	g.render(Select(state), state)
}

func (g *Gate) Stop() {
	if g.unsubscribe != nil {
		g.unsubscribe()
		g.unsubscribe = nil
	}
}

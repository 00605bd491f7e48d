package core

// Client is a live connection as seen by the core layer. ID is the
// connection identity everything else is keyed by; UserID and Tier come
// from the auth collaborator and are zero-valued for anonymous sockets.
type Client struct {
	ID       string
	Name     string
	UserID   int64
	Tier     string
	Commands chan *Command
	Events   chan *Event

	// done is closed by the hub at unregister so the client's command
	// forwarder exits with it.
	done chan struct{}
}

// NewClient constructs a client with initialized channels.
func NewClient(id, name string, userID int64, tier string) *Client {
	if name == "" {
		name = id
	}
	return &Client{
		ID:       id,
		Name:     name,
		UserID:   userID,
		Tier:     tier,
		Commands: make(chan *Command, 8),
		Events:   make(chan *Event, 8),
		done:     make(chan struct{}),
	}
}

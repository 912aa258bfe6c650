package client

// Transport carries raw message lines to and from the relay server.
type Transport interface {
	Connect(addr string) error
	WriteLine(line []byte) error
	ReadLine() ([]byte, error) // for one-at-a-time processing
	Close() error
}

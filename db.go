package mailreg

type Database interface {
	Open() error
	Close() error
}

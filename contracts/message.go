package contracts

// Message is the read side of a batch message
type Message interface {
	Mappable
	From() (string, error)
	Subject() (string, error)
	Body() (string, error)
	Recipients() ([]string, error)
	Attachments() []string
	GetHash() string
	BatchIdentifier() string
}

// Formattable renders subject and body through named formatters
type Formattable interface {
	Format(name, value string) (string, error)
	FormattedSubject(formatter string) (string, error)
	FormattedBody(formatter string) (string, error)
}

var (
	_ Message     = (*BatchMessage)(nil)
	_ Formattable = (*BatchMessage)(nil)
)

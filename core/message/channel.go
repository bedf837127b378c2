package message

import (
	"encoding/json"

	"github.com/google/uuid"
)

// SourceType identifies which listener implementation a channel's source
// configuration targets.
type SourceType string

const (
	SourceHTTP     SourceType = "http_listener"
	SourceTCP      SourceType = "tcp_listener"
	SourceFile     SourceType = "file_reader"
	SourceDatabase SourceType = "database_poller"
	SourceTest     SourceType = "test_source"
)

// SourceConfig configures a channel's single inbound source. Only the
// fields relevant to Type are populated; the rest are zero.
type SourceConfig struct {
	Type SourceType

	// http_listener / tcp_listener
	Port     int
	Path     string // http_listener only, defaults to "/"
	CertPath string // optional TLS
	KeyPath  string

	// file_reader
	FilePath string
	Pattern  string

	// database_poller
	URL        string
	Query      string
	IntervalMs int64

	// test_source
	PayloadType string
	Payload     string
}

// ProcessorType identifies which pipeline stage a ProcessorConfig runs.
type ProcessorType string

const (
	ProcessorLua    ProcessorType = "lua_script"
	ProcessorMapper ProcessorType = "mapper"
	ProcessorFilter ProcessorType = "filter"
	ProcessorRouter ProcessorType = "router"
	ProcessorHL7    ProcessorType = "hl7_parser"
)

// Mapping copies a value found at Source (a dotted/bracketed JSON path)
// to Target within the same JSON document.
type Mapping struct {
	Source string
	Target string
}

// Route is a named condition evaluated by a router processor. Routing
// itself is not part of the core pipeline contract (spec.md carries no
// fan-out operation); Routes are preserved on the config for forward
// compatibility with channel definitions imported from the original tool.
type Route struct {
	Name      string
	Condition string
}

// ProcessorConfig configures one stage of a channel's ordered pipeline.
type ProcessorConfig struct {
	ID   string
	Name string
	Type ProcessorType

	Code         string    // lua_script
	Mappings     []Mapping // mapper
	Condition    string    // filter
	Routes       []Route   // router
	InputFormat  string    // hl7_parser
	OutputFormat string    // hl7_parser
}

// DestinationType identifies which sender implementation a
// DestinationConfig targets.
type DestinationType string

const (
	DestinationHTTP     DestinationType = "http_sender"
	DestinationFile     DestinationType = "file_writer"
	DestinationDatabase DestinationType = "database_writer"
	DestinationTCP      DestinationType = "tcp_sender"
	DestinationLua      DestinationType = "lua_script"
)

// DestinationConfig configures one outbound delivery target.
type DestinationConfig struct {
	ID   string
	Name string
	Type DestinationType

	// http_sender
	URL    string
	Method string

	// file_writer
	FilePath string
	Filename string
	Append   *bool
	Encoding string

	// database_writer
	DBURL   string
	Table   string
	Mode    string
	DBQuery string

	// tcp_sender
	Host string
	Port int

	// lua_script
	Code string
}

// Channel is the full configuration of one message route: one source,
// an ordered pipeline of processors, and a fan-out set of destinations.
type Channel struct {
	ID               uuid.UUID
	Name             string
	Enabled          bool
	Source           SourceConfig
	Processors       []ProcessorConfig
	Destinations     []DestinationConfig
	ErrorDestination *DestinationConfig
	MaxRetries       int
	Metadata         map[string]string

	// FrontendSchema is an opaque blob a visual channel editor attaches to
	// its saved config (e.g. node positions, UI hints). The core persists
	// and returns it verbatim and never interprets its contents.
	FrontendSchema json.RawMessage
}

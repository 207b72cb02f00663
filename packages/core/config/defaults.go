package config

const (
	// DefaultBaseURL is where the strip board is served during a local run
	DefaultBaseURL = "http://localhost:8000/"
	// DefaultArtifactsDir receives screenshots and results.json
	DefaultArtifactsDir = "artifacts/formation"
	// DefaultHistoryFile is the history database name inside the artifacts directory
	DefaultHistoryFile = "stripcheck.db"
	// DefaultMovementsKey is the localStorage key of the movements envelope
	DefaultMovementsKey = "fdms_movements_v3"
	// DefaultBookingsKey is the localStorage key of the bookings collection
	DefaultBookingsKey = "fdms_bookings_v1"
)

// DefaultIgnoreErrors are console error substrings caused by running offline
var DefaultIgnoreErrors = []string{
	"net::ERR_",
	"Failed to load resource",
	"ERR_INTERNET_DISCONNECTED",
	"ERR_NAME_NOT_RESOLVED",
}

// DefaultStubRoutes are fulfilled with an empty script so the page loads without network access
var DefaultStubRoutes = []string{
	"**/xlsx*.js",
}

// DefaultSelectors returns the selectors of the stock strip board
func DefaultSelectors() Selectors {
	return Selectors{
		Ready:              "#stripBoard",
		NewMovement:        "#btnNewMovement",
		MovementModal:      "#movementModal",
		FormCallsign:       "#newCallsign",
		FormRegistration:   "#newReg",
		FormType:           "#newType",
		FormWTC:            "#newWtc",
		FormFormationCount: "#newFormationCount",
		FormSave:           "#movementModal .js-save",
		Strip:              `tr.strip[data-id="{id}"]`,
		Badge:              ".badge-formation",
		ExpandToggle:       ".js-toggle-details",
		FormationTable:     ".formation-table",
		ElementRow:         ".formation-table tbody tr",
		ElementStatus:      "select.fmn-el-status",
		ElementDepActual:   "input.fmn-el-dep",
		ElementArrActual:   "input.fmn-el-arr",
		ElementSave:        ".js-save-fmn-el",
		EditButton:         ".js-edit",
		EditModal:          "#editModal",
		EditFormationCount: "#editFormationCount",
		EditSave:           "#editModal .js-save",
		DuplicateButton:    ".js-duplicate",
	}
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		BaseURL:       DefaultBaseURL,
		ArtifactsDir:  DefaultArtifactsDir,
		Headless:      BoolPtr(true),
		SlowMo:        0,
		Timeout:       5000, // 5 seconds
		SettleTimeout: 3000, // 3 seconds
		Viewport:      Viewport{Width: 1440, Height: 900},
		Storage: Storage{
			MovementsKey: DefaultMovementsKey,
			BookingsKey:  DefaultBookingsKey,
		},
		StubRoutes:   append([]string(nil), DefaultStubRoutes...),
		IgnoreErrors: append([]string(nil), DefaultIgnoreErrors...),
		Selectors:    DefaultSelectors(),
		Reporters:    []string{"console"},
		NoColor:      BoolPtr(false),
		Verbose:      BoolPtr(false),
	}
}

package cli

var (
	verbose    bool
	configPath string

	// keyboard, mouse and window commands
	processName string

	// for screenshot and window capture commands
	screenshotOutputPath  string
	screenshotFilename    string
	screenshotFormat      string
	screenshotJpegQuality int
	screenshotRegion      string

	// for keyboard commands
	keyPresses   int
	keyInterval  float64
	typeInterval float64

	// for mouse commands
	mouseButton   string
	mouseClicks   int
	mouseInterval float64
	mouseDuration float64
	scrollAt      string

	// for window and apps commands
	waitTime     float64
	captureFront bool
	appsFilter   string

	// for server commands
	listenAddr  string
	serverToken string
)

package hvmtest

type config struct {
	parseErr     string
	parseErrBook bool
	evaluateErr  string
	serializeErr string
	result       []byte
	seconds      float64
	cRuntime     bool
}

func defaultConfig() config {
	return config{seconds: 0.25}
}

// Option configures the fake engine.
type Option func(*config)

// WithCRuntime makes the fake accept entities.RuntimeC. Without it the fake
// answers "C runtime not supported", like an engine built without a C
// compiler.
func WithCRuntime() Option {
	return func(c *config) {
		c.cRuntime = true
	}
}

// WithSeconds sets the duration every evaluation reports.
func WithSeconds(seconds float64) Option {
	return func(c *config) {
		c.seconds = seconds
	}
}

// WithResult sets the raw bytes of the result string, which need not be
// valid UTF-8.
func WithResult(result []byte) Option {
	return func(c *config) {
		c.result = result
	}
}

// WithParseError makes every parse fail with msg.
func WithParseError(msg string) Option {
	return func(c *config) {
		c.parseErr = msg
		c.parseErrBook = false
	}
}

// WithParseErrorAfterAlloc makes every parse report msg through the error
// channel while still returning an allocated book, which the caller must
// free.
func WithParseErrorAfterAlloc(msg string) Option {
	return func(c *config) {
		c.parseErr = msg
		c.parseErrBook = true
	}
}

// WithEvaluateError makes every evaluation report msg through the error
// channel while still returning a fully allocated record.
func WithEvaluateError(msg string) Option {
	return func(c *config) {
		c.evaluateErr = msg
	}
}

// WithSerializeError makes every serialization report msg through the error
// channel while still returning an allocated vector.
func WithSerializeError(msg string) Option {
	return func(c *config) {
		c.serializeErr = msg
	}
}

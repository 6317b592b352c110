package transfer

// Options configures a VM at construction time. Use the With* setters
// with NewVM; NewVM starts from the defaults the original VM shipped
// with (no call-depth limit, strict-variable lookups off, "C" locale).
type Options struct {
	maxCallDepth    int
	strictVariables bool
	locale          string
	debug           bool
}

// Option mutates an Options value; returned by the With* constructors
// below and applied in order by NewVM.
type Option func(*Options)

func newOptions(opts ...Option) Options {
	o := Options{maxCallDepth: 0, locale: "C"}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithMaxCallDepth bounds rule/macro call recursion; 0 (the default)
// means unbounded, matching the original VM which relied on the host
// stack to eventually fault instead of tracking depth itself.
func WithMaxCallDepth(n int) Option {
	return func(o *Options) { o.maxCallDepth = n }
}

// WithStrictVariables makes a push-var read of an undeclared
// variable an error instead of silently auto-vivifying it to "".
func WithStrictVariables(strict bool) Option {
	return func(o *Options) { o.strictVariables = strict }
}

// WithLocale sets the locale tag stored in the VM's options. Nothing in
// the package reads it: it does not appear in diagnostics, and the
// case-folding helpers in caseutil.go are Unicode-aware independent of
// this setting.
func WithLocale(locale string) Option {
	return func(o *Options) { o.locale = locale }
}

// WithDebug makes the VM log each rule selection (rule number and the
// word positions it covers) through the package Logger as it fires.
func WithDebug(debug bool) Option {
	return func(o *Options) { o.debug = debug }
}

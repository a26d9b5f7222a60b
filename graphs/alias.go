package graphs

import "github.com/reusee/e5"

var wrap = e5.Wrap.With(e5.WrapStacktrace)

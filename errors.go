package rendertask

import "errors"

// ErrCacheBuild is returned by Cache.Request when the builder could not
// construct the cached task chain. The builder's own error is wrapped as
// well, so both can be matched with errors.Is.
var ErrCacheBuild = errors.New("rendertask: building cached render task failed")

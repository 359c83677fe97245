package listeners

import "regexp"

// bindAll replaces whatever host a listener advertises so a container-local
// process binds every interface.
const bindAll = "0.0.0.0"

// listenerRe captures scheme://host:port. The host part may be empty, which
// some listener configs use to mean "default interface".
var listenerRe = regexp.MustCompile(`([a-zA-Z0-9_-]+)://([^:,]*):([0-9]+)`)

// Rewrite replaces the host of every scheme://host:port occurrence in raw
// with 0.0.0.0, keeping scheme and port. Input without matches passes through
// unchanged, and the transform is idempotent.
func Rewrite(raw string) string {
    return listenerRe.ReplaceAllString(raw, "$1://"+bindAll+":$3")
}

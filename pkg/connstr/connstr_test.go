package connstr

import "testing"

func TestParse(t *testing.T) {
    cases := []struct{
        in     string
        hosts  []string
        ports  []int
        chroot string
    }{
        {"a:1", []string{"a"}, []int{1}, "/"},
        {"a:1,b:2/chroot/path", []string{"a", "b"}, []int{1, 2}, "/chroot/path"},
        {"zk1:2181,zk2:2181,zk3:2181", []string{"zk1", "zk2", "zk3"}, []int{2181, 2181, 2181}, "/"},
        {"a:1/", []string{"a"}, []int{1}, "/"},
    }
    for _, c := range cases {
        got, err := Parse(c.in)
        if err != nil {
            t.Fatalf("Parse(%q) error: %v", c.in, err)
        }
        if got.Chroot != c.chroot {
            t.Fatalf("[%q] chroot: got %q want %q", c.in, got.Chroot, c.chroot)
        }
        if len(got.Endpoints) != len(c.hosts) {
            t.Fatalf("[%q] endpoint count: got %d want %d", c.in, len(got.Endpoints), len(c.hosts))
        }
        for i, e := range got.Endpoints {
            if e.Host != c.hosts[i] || e.Port != c.ports[i] {
                t.Fatalf("[%q] endpoint %d: got %s:%d want %s:%d", c.in, i, e.Host, e.Port, c.hosts[i], c.ports[i])
            }
        }
    }
}

func TestParseRejectsMalformed(t *testing.T) {
    for _, in := range []string{"", "/chroot", "a", "a:x", "a:1,b", "a:1,b:nope/c"} {
        if _, err := Parse(in); err == nil {
            t.Fatalf("Parse(%q): expected error", in)
        }
    }
}

func TestServers(t *testing.T) {
    cs, err := Parse("a:1,b:2/app")
    if err != nil { t.Fatal(err) }
    got := cs.Servers()
    if len(got) != 2 || got[0] != "a:1" || got[1] != "b:2" {
        t.Fatalf("unexpected servers: %#v", got)
    }
}

package main

import (
    "log"

    probecli "github.com/quorumprobe/quorumprobe/pkg/cli"
)

func main() {
    if err := probecli.NewRootCmd().Execute(); err != nil {
        log.Fatal(err)
    }
}

package main

import (
	"github.com/thanhvu/hotelier/cmd/api"
)

func main() {
	api.StartServer()
}

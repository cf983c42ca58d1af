package main

import (
	"github.com/toozhub/toozhub/cmd/cli/root"

	_ "github.com/toozhub/toozhub/cmd/cli/auth"
	_ "github.com/toozhub/toozhub/cmd/cli/records"
	_ "github.com/toozhub/toozhub/cmd/cli/services"
	_ "github.com/toozhub/toozhub/cmd/cli/settings"
	_ "github.com/toozhub/toozhub/cmd/cli/system"
	_ "github.com/toozhub/toozhub/cmd/cli/users"
	_ "github.com/toozhub/toozhub/cmd/cli/vehicles"
)

func main() {
	root.Execute()
}

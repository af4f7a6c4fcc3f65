// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/modweave/modweave/cmd/modweave"

func main() {
	cmd.Execute()
}

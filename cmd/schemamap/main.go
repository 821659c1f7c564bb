// SPDX-License-Identifier: MIT

package main

import "github.com/ontoforge/schemamap/cmd/schemamap/cmd"

func main() {
	cmd.Execute()
}

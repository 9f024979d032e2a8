// Command mysqlx-connector-setup builds and packages mysqlx-connector-python,
// the X DevAPI driver with its protobuf extension.
package main

import (
	"github.com/contriboss/connector-setup/internal/cli"
)

func main() {
	cli.Main(project(), "MYSQLX_CONNECTOR")
}

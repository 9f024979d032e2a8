// Command mysql-connector-setup builds and packages mysql-connector-python.
//
// Run it from the package directory, whose parent holds the shared metadata files:
//
//	mysql-connector-setup --with-mysql-capi /usr/bin/mysql_config build_ext sdist
package main

import (
	"github.com/contriboss/connector-setup/internal/cli"
)

func main() {
	cli.Main(project(), "MYSQL_CONNECTOR")
}

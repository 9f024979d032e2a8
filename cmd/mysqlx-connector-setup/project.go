package main

import (
	setup "github.com/contriboss/connector-setup"
)

const longDescription = `
MySQL driver written in Python which implements the X DevAPI,
an Application Programming Interface for working with the
MySQL Document Store.
`

// protobufSources are compiled in this order, mysqlxpb.cc last.
var protobufSources = []string{
	"src/mysqlxpb/mysqlx/mysqlx.pb.cc",
	"src/mysqlxpb/mysqlx/mysqlx_connection.pb.cc",
	"src/mysqlxpb/mysqlx/mysqlx_crud.pb.cc",
	"src/mysqlxpb/mysqlx/mysqlx_cursor.pb.cc",
	"src/mysqlxpb/mysqlx/mysqlx_datatypes.pb.cc",
	"src/mysqlxpb/mysqlx/mysqlx_expect.pb.cc",
	"src/mysqlxpb/mysqlx/mysqlx_expr.pb.cc",
	"src/mysqlxpb/mysqlx/mysqlx_notice.pb.cc",
	"src/mysqlxpb/mysqlx/mysqlx_prepare.pb.cc",
	"src/mysqlxpb/mysqlx/mysqlx_resultset.pb.cc",
	"src/mysqlxpb/mysqlx/mysqlx_session.pb.cc",
	"src/mysqlxpb/mysqlx/mysqlx_sql.pb.cc",
	"src/mysqlxpb/mysqlxpb.cc",
}

func project() *setup.Project {
	return &setup.Project{
		Name:            "mysqlx-connector-python",
		Description:     "XDevAPI MySQL driver written in Python",
		LongDescription: longDescription,
		Author:          "Oracle and/or its affiliates",
		License:         "GNU GPLv2 (with FOSS License Exception)",
		Keywords:        "mysql db",
		URL:             "http://dev.mysql.com/doc/connector-python/en/index.html",
		DownloadURL:     "http://dev.mysql.com/downloads/connector/python/",
		Classifiers: []string{
			"Development Status :: 5 - Production/Stable",
			"Environment :: Other Environment",
			"Intended Audience :: Developers",
			"Intended Audience :: Education",
			"Intended Audience :: Information Technology",
			"Intended Audience :: System Administrators",
			"License :: OSI Approved :: GNU General Public License (GPL)",
			"Operating System :: OS Independent",
			"Programming Language :: Python :: 3",
			"Programming Language :: Python :: 3.8",
			"Programming Language :: Python :: 3.9",
			"Programming Language :: Python :: 3.10",
			"Programming Language :: Python :: 3.11",
			"Programming Language :: Python :: 3.12",
			"Topic :: Database",
			"Topic :: Software Development",
			"Topic :: Software Development :: Libraries :: Application Frameworks",
			"Topic :: Software Development :: Libraries :: Python Modules",
		},
		VersionFile: "lib/mysqlx/version.toml",
		PackageRoot: "lib",
		Extensions: []setup.Extension{
			{
				Name:         "_mysqlxpb",
				Sources:      protobufSources,
				DefineMacros: []setup.Macro{{Name: "PY3", Value: "1"}},
				Libraries:    []string{"protobuf"},
			},
		},
		PythonRequires:  ">=3.8",
		InstallRequires: []string{"protobuf>=4.21.1,<=4.21.12"},
		Extras: map[string][]string{
			"dns-srv":     {"dnspython>=1.16.0,<2.7.0"},
			"compression": {"lz4>=2.1.6,<=4.3.2", "zstandard>=0.12.0,<=0.19.0"},
		},
		MetadataFiles: []string{
			"README.txt",
			"README.rst",
			"LICENSE.txt",
			"CHANGES.txt",
			"CONTRIBUTING.rst",
		},
	}
}

package main

import (
	setup "github.com/contriboss/connector-setup"
)

const longDescription = `
MySQL driver written in Python which does not depend on MySQL C client
libraries and implements the DB API v2.0 specification (PEP-249).
`

func project() *setup.Project {
	return &setup.Project{
		Name:            "mysql-connector-python",
		Description:     "MySQL driver written in Python",
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
		VersionFile: "lib/mysql/connector/version.toml",
		PackageRoot: "lib",
		Extensions: []setup.Extension{
			{
				Name: "_mysql_connector",
				Sources: []string{
					"src/exceptions.c",
					"src/mysql_capi.c",
					"src/mysql_capi_conversion.c",
					"src/mysql_connector.c",
					"src/force_cpp_linkage.cc",
				},
				IncludeDirs: []string{"src/include"},
			},
		},
		PythonRequires: ">=3.8",
		Extras: map[string][]string{
			"dns-srv": {"dnspython>=1.16.0,<2.7.0"},
			"gssapi":  {"gssapi>=1.6.9,<=1.8.2"},
			"opentelemetry": {
				"Deprecated>=1.2.6",
				"typing-extensions>=3.7.4",
				"zipp>=0.5",
			},
			"fido2": {"fido2==1.1.2"},
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

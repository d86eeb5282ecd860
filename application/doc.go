/*
Package application is a library for building avltree-go executables.

application provides the pieces every tool in this repository shares:
configuration files with pluggable encodings, key loading, and logging.

Config

This module defines the AppConfig abstraction implemented by each
executable's configuration, the CommonConfig values they embed, and
helpers for loading signing keys referenced from a config file.
Configurations are encoded through a ConfigLoader; TOML is the only
encoding currently supported.

Logger

This module implements a generic logging system that can be used by any
avltree-go application/executable.
*/
package application

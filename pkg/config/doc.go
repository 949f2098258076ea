// Package config loads the mediabackup configuration.
//
//	            +-------------+
//	            |   Config    |
//	            | (Registry)  |
//	            +------+------+
//	                   |
//	      +------------+------------+
//	      |            |            |
//	+-----+-----+ +----+----+ +-----+-----+
//	|   JSON    | |  YAML   | |    HCL    |
//	|  Parser   | | Parser  | |  Parser   |
//	+-----------+ +---------+ +-----------+
//
// The format is picked from the file extension. Parsing is strict: unknown keys
// are rejected. LoadOrDefault is what the CLI uses; a missing or malformed file
// logs a warning and yields Default, so a run always has an extension registry.
//
// Example:
//
//	{
//	    "supported_extensions": [".jpg", ".mp4"],
//	    "recursive": true,
//	    "ignore_patterns": ["**/.thumbnails/**"],
//	    "date_source": "exif"
//	}
//
// The resulting Config is not modified after Validate; the media.Registry and
// media.DateResolver built from it are handed to the backup package explicitly.
package config

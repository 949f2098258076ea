/*
Package status turns backup progress into something a person can watch.

	+-----------+   ProgressFunc   +-----------+
	|  backup   | ---------------> | Reporter  |
	|  (core)   |  done/total/res  | (display) |
	+-----------+                  +-----+-----+
	                                     |
	                        +------------+------------+
	                        |                         |
	                  +-----+------+           +------+-----+
	                  | LogReporter|           | BarReporter|
	                  |  (zerolog) |           |   (pterm)  |
	                  +------------+           +------------+

The backup package knows nothing about terminals; it calls a ProgressFunc once
per file on the caller's goroutine. Progress adapts any Reporter to that
callback. FileFormatter owns the wording so both reporters say the same thing.
*/
package status

package attention

// Exports for testing.
var Scan = scan
var ScanAndFilter = scanAndFilter

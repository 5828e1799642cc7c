package version

var BuildVersion = "<version>"

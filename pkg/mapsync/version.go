package mapsync

// Version is reported in the User-Agent of every request.
const Version = "1.0.0"

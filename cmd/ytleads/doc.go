// Command ytleads turns a YouTube video into a set of lead-generation assets.
//
// "ytleads run <url>" drives one video through the thirteen-step pipeline in
// the foreground; "ytleads serve" exposes the same pipeline over an HTTP API.
// The jobs subcommands inspect and manage the persisted job list shared by
// both.
package main

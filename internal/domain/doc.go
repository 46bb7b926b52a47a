// Package domain contains the entities of the tracker: curators and the
// catalogs that classify them, tasks, the assignments fanning a task out to
// recipients, the per-recipient reports, and delivery outcomes returned by the
// notification bot.
//
// Types in this package carry no persistence or transport concerns. Stores in
// internal/platform/postgres map them to rows and the api package maps them to
// JSON payloads.
package domain

// Package journal records the outcome of every acquisition cycle in a local
// SQLite database. The journal exists for post-hoc diagnosis of upstream
// outages ("when did the tile feed go dark?") and is strictly advisory:
// journal failures are logged and never affect scheduling or storage.
package journal

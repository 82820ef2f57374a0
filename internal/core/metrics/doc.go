// Package metrics derives streaks, consistency percentages, productivity
// scores and challenge progress from a habit snapshot.
//
// Every function is a pure function of its arguments: no caching, no clock
// reads, no errors. Callers pass the habit snapshot and the date that counts
// as "today" and get bounded values back (streaks >= 0, percentages in
// [0,100]).
package metrics

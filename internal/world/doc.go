// Package world provides the host worlds a pressure body syncs with once per
// tick. The soft-body core owns internal forces only; a host owns gravity,
// drag and, for Chipmunk, collisions against the rest of the scene.
package world

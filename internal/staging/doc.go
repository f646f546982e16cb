// Package staging reclaims temporary files left in the work directory by
// interrupted tasks.
package staging

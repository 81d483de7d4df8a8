// Package app is the application layer. The Service is the only component
// that references multiple domain components and orchestrates all use cases;
// the Recorder persists fused emotional states while a study session runs.
package app

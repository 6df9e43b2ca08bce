// Package registry tracks uploaded-but-unconfirmed files per editing session
// and owns best-effort deletion of blobs in the upload directory. A file is
// either untracked (never uploaded, or already confirmed) or temporary and
// owned by exactly one session. Confirm and cleanup are the only exits from
// the temporary state.
package registry

import (
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Registry holds the session->files and file->session maps. The two maps are
// exact inverses; every mutation updates both under the same lock.
type Registry struct {
	mu            sync.Mutex
	uploadDir     string
	sessionFiles  map[string]map[string]struct{}
	fileToSession map[string]string
}

// New creates a Registry over uploadDir, creating the directory if needed.
func New(uploadDir string) (*Registry, error) {
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		return nil, err
	}
	return &Registry{
		uploadDir:     uploadDir,
		sessionFiles:  make(map[string]map[string]struct{}),
		fileToSession: make(map[string]string),
	}, nil
}

// UploadDir returns the directory the registry manages.
func (r *Registry) UploadDir() string {
	return r.uploadDir
}

// Register records fileName as temporary and owned by sessionID. Registering
// an already-tracked file moves it to the new session; a file is never
// tracked under two sessions.
func (r *Registry) Register(sessionID, fileName string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.fileToSession[fileName]; ok && prev != sessionID {
		delete(r.sessionFiles[prev], fileName)
		if len(r.sessionFiles[prev]) == 0 {
			delete(r.sessionFiles, prev)
		}
	}
	if r.sessionFiles[sessionID] == nil {
		r.sessionFiles[sessionID] = make(map[string]struct{})
	}
	r.sessionFiles[sessionID][fileName] = struct{}{}
	r.fileToSession[fileName] = sessionID
}

// Confirm detaches fileName from temporary tracking, leaving the blob on
// disk. Confirming an untracked file is a no-op.
func (r *Registry) Confirm(fileName string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.forgetLocked(fileName)
}

func (r *Registry) forgetLocked(fileName string) {
	sessionID, ok := r.fileToSession[fileName]
	if !ok {
		return
	}
	delete(r.fileToSession, fileName)
	delete(r.sessionFiles[sessionID], fileName)
	if len(r.sessionFiles[sessionID]) == 0 {
		delete(r.sessionFiles, sessionID)
	}
}

// CleanupSession deletes every file still tracked under sessionID from disk
// and drops the session. Missing files are treated as already deleted.
func (r *Registry) CleanupSession(sessionID string) {
	r.mu.Lock()
	files := make([]string, 0, len(r.sessionFiles[sessionID]))
	for name := range r.sessionFiles[sessionID] {
		files = append(files, name)
		delete(r.fileToSession, name)
	}
	delete(r.sessionFiles, sessionID)
	r.mu.Unlock()

	for _, name := range files {
		r.removeBlob(name)
	}
}

// DeleteFile deletes fileName from disk unconditionally and detaches it from
// the registry if it was tracked. Callers detaching a confirmed file are
// responsible for removing any record reference first.
func (r *Registry) DeleteFile(fileName string) {
	r.mu.Lock()
	r.forgetLocked(fileName)
	r.mu.Unlock()
	r.removeBlob(fileName)
}

// Tracked reports whether fileName is currently registered as temporary.
func (r *Registry) Tracked(fileName string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.fileToSession[fileName]
	return ok
}

// SessionFiles returns the files currently tracked under sessionID.
func (r *Registry) SessionFiles(sessionID string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	files := make([]string, 0, len(r.sessionFiles[sessionID]))
	for name := range r.sessionFiles[sessionID] {
		files = append(files, name)
	}
	return files
}

// Sweep scans the upload directory and deletes files that are still tracked
// as temporary and whose modification time is older than maxAge. Confirmed
// files are never touched regardless of age. Tracked status is re-checked
// under the lock immediately before each entry is claimed, so a file
// confirmed after the scan started survives. Returns the number of files
// removed.
func (r *Registry) Sweep(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(r.uploadDir)
	if err != nil {
		return 0, err
	}
	now := time.Now()

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if now.Sub(info.ModTime()) <= maxAge {
			continue
		}

		name := entry.Name()
		r.mu.Lock()
		_, tracked := r.fileToSession[name]
		if tracked {
			r.forgetLocked(name)
		}
		r.mu.Unlock()
		if !tracked {
			continue
		}
		r.removeBlob(name)
		removed++
	}
	return removed, nil
}

// removeBlob deletes a blob from the upload directory. Deletion is
// best-effort: a missing file is success, anything else is logged and
// swallowed.
func (r *Registry) removeBlob(fileName string) {
	path := filepath.Join(r.uploadDir, filepath.Base(fileName))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Printf("remove blob %s failed: %v", path, err)
	}
}

package remotehead

import (
	"context"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/storage/memory"
)

const (
	nativeRemoteNameConstant            = "upstream"
	listReferencesErrorTemplateConstant = "unable to list references of %s: %w"
)

// ReferenceLister lists the references advertised by a remote.
type ReferenceLister func(executionContext context.Context, remoteURL string) ([]*plumbing.Reference, error)

// NativeResolver lists remote references in-process with go-git.
type NativeResolver struct {
	listReferences ReferenceLister
}

// NewNativeResolver constructs a NativeResolver backed by an in-memory go-git remote.
func NewNativeResolver() *NativeResolver {
	return &NativeResolver{listReferences: listRemoteReferences}
}

// NewNativeResolverWithLister constructs a NativeResolver that uses the provided lister.
func NewNativeResolverWithLister(lister ReferenceLister) *NativeResolver {
	if lister == nil {
		lister = listRemoteReferences
	}
	return &NativeResolver{listReferences: lister}
}

// ResolveHead returns the hash of the advertised HEAD, following a symbolic HEAD to its target.
func (resolver *NativeResolver) ResolveHead(executionContext context.Context, remoteURL string) (string, error) {
	references, listError := resolver.listReferences(executionContext, remoteURL)
	if listError != nil {
		return "", fmt.Errorf(listReferencesErrorTemplateConstant, remoteURL, listError)
	}
	return selectHeadHash(references)
}

func listRemoteReferences(executionContext context.Context, remoteURL string) ([]*plumbing.Reference, error) {
	remote := git.NewRemote(memory.NewStorage(), &config.RemoteConfig{
		Name: nativeRemoteNameConstant,
		URLs: []string{remoteURL},
	})
	return remote.ListContext(executionContext, &git.ListOptions{})
}

func selectHeadHash(references []*plumbing.Reference) (string, error) {
	referencesByName := make(map[plumbing.ReferenceName]*plumbing.Reference, len(references))
	for _, reference := range references {
		if reference == nil {
			continue
		}
		referencesByName[reference.Name()] = reference
	}

	current, found := referencesByName[plumbing.HEAD]
	for depth := 0; found && depth < len(referencesByName); depth++ {
		if current.Type() != plumbing.SymbolicReference {
			if current.Hash().IsZero() {
				return "", ErrHeadNotAdvertised
			}
			return current.Hash().String(), nil
		}
		current, found = referencesByName[current.Target()]
	}
	return "", ErrHeadNotAdvertised
}

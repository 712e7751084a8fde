package repofs

import "strings"

// Path helpers shared by the backends and the localizer. These operate on
// URI-style paths with "/" separators regardless of backend, so they live
// here rather than delegating to path/filepath, which would rewrite
// separators and collapse the scheme's double slash on some platforms.

// IsAbsolutePath reports whether path starts at a root.
func IsAbsolutePath(path string) bool {
	return strings.HasPrefix(path, "/")
}

// JoinPath joins segments with single slashes. An absolute segment is
// appended without doubling the separator; relative segments get exactly
// one slash between them and the accumulated path.
func JoinPath(segments ...string) string {
	var joined string
	for _, seg := range segments {
		if joined == "" {
			joined = seg
			continue
		}
		if IsAbsolutePath(seg) {
			if strings.HasSuffix(joined, "/") {
				joined += seg[1:]
			} else {
				joined += seg
			}
		} else {
			if !strings.HasSuffix(joined, "/") {
				joined += "/"
			}
			joined += seg
		}
	}
	return joined
}

// BaseName returns the final path element, ignoring trailing slashes.
// A path of only slashes has no base name.
func BaseName(path string) string {
	if path == "" {
		return path
	}

	last := len(path) - 1
	for last > 0 && path[last] == '/' {
		last--
	}
	if path[last] == '/' {
		return ""
	}

	idx := strings.LastIndex(path[:last+1], "/")
	if idx < 0 {
		return path[:last+1]
	}
	return path[idx+1 : last+1]
}

// DirName returns everything before the final path element. A relative
// single element yields ".", a root-level element yields "/".
func DirName(path string) string {
	if path == "" {
		return path
	}

	last := len(path) - 1
	for last > 0 && path[last] == '/' {
		last--
	}
	if path[last] == '/' {
		return "/"
	}

	idx := strings.LastIndex(path[:last+1], "/")
	if idx < 0 {
		return "."
	}
	if idx == 0 {
		return "/"
	}
	return path[:idx]
}

// AppendSlash normalizes a prefix for object-store listing by ensuring a
// single trailing slash. Empty input stays empty.
func AppendSlash(name string) string {
	if name == "" || strings.HasSuffix(name, "/") {
		return name
	}
	return name + "/"
}

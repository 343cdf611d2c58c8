package errors

// Convenience constructors, one per kind.

func General(format string, args ...any) *SiteError {
	return Newf(KindGeneral, format, args...)
}

func FileOrDirNotFound(format string, args ...any) *SiteError {
	return Newf(KindFileOrDirNotFound, format, args...)
}

func MissingElement(format string, args ...any) *SiteError {
	return Newf(KindMissingElement, format, args...)
}

func WrongTypeOrFormat(format string, args ...any) *SiteError {
	return Newf(KindWrongTypeOrFormat, format, args...)
}

func Template(format string, args ...any) *SiteError {
	return Newf(KindTemplate, format, args...)
}

func YAML(format string, args ...any) *SiteError {
	return Newf(KindYAML, format, args...)
}

func JSON(format string, args ...any) *SiteError {
	return Newf(KindJSON, format, args...)
}

func Image(format string, args ...any) *SiteError {
	return Newf(KindImage, format, args...)
}

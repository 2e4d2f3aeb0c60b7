package analysis

import "fmt"

const jsonOnly = "\n\nReturn only the JSON document, without commentary or markdown."

const resumeSystemPrompt = `You are an expert ATS (Applicant Tracking System) and resume analyzer.
Analyze the provided resume and extract key information. Provide a comprehensive analysis including:
- Skills (programming languages, frameworks, tools)
- Experience summary
- Education details
- ATS score (0-100 based on keyword density, formatting, and relevance)
- Strengths (skills and experiences that stand out)
- Weaknesses (missing keywords or areas for improvement)
- Suggestions for improvement

Respond with JSON in this exact format:
{
  "skills": ["skill1", "skill2"],
  "experience": "brief summary",
  "education": "education details",
  "atsScore": number,
  "strengths": ["strength1", "strength2"],
  "weaknesses": ["weakness1", "weakness2"],
  "suggestions": "detailed suggestions"
}` + jsonOnly

const jobMatchSystemPrompt = `You are an expert job matching analyst. Compare the provided resume with the job description and analyze how well they match.

Calculate:
- Overall match percentage (0-100)
- Skills match ratio (e.g., "15/18")
- Experience level match (e.g., "4/5")
- Education requirements match (boolean)
- Missing skills that are required for the job

Respond with JSON in this exact format:
{
  "matchPercentage": number,
  "skillsMatch": "x/y",
  "experienceMatch": "x/y",
  "educationMatch": boolean,
  "missingSkills": ["skill1", "skill2"]
}` + jsonOnly

const interviewSystemPrompt = `You are an expert interviewer and HR professional. Generate relevant interview questions based on the job description and title.

Create three categories of questions:
- General questions (5-7 questions about the role and company fit)
- Technical questions (5-7 questions specific to the technical requirements)
- Behavioral questions (5-7 STAR method questions)

Respond with JSON in this exact format:
{
  "general": ["question1", "question2"],
  "technical": ["tech question1", "tech question2"],
  "behavioral": ["behavioral question1", "behavioral question2"]
}` + jsonOnly

const skillGapSystemPrompt = `You are a career development expert. Analyze the gap between the candidate's current skills (from resume) and the job requirements.

Identify:
- Missing skills that are required or preferred for the job
- Priority level (high, medium, low) based on how critical these skills are
- Specific recommendations for acquiring these skills

Respond with JSON in this exact format:
{
  "missingSkills": ["skill1", "skill2"],
  "priority": "high|medium|low",
  "recommendations": "detailed recommendations"
}` + jsonOnly

func jobMatchPrompt(resumeText, jobText, jobTitle string) string {
	return fmt.Sprintf(`Job Title: %s

Resume:
%s

Job Description:
%s

Analyze the match between this resume and job description.`, jobTitle, resumeText, jobText)
}

func coverLetterPrompt(resumeText, jobText, jobTitle, company string) string {
	return fmt.Sprintf(`Create a professional, personalized cover letter based on the following information:

Job Title: %s
Company: %s
Resume: %s
Job Description: %s

Requirements:
- Professional tone and format
- Highlight relevant experience from the resume
- Address specific requirements mentioned in the job description
- Show enthusiasm for the role and company
- Include proper opening and closing
- Keep it concise but impactful (3-4 paragraphs)
- Use the applicant's actual experience and skills from the resume

Write a complete cover letter that would impress hiring managers. Reply with the letter text only.`, jobTitle, company, resumeText, jobText)
}

func interviewPrompt(jobText, jobTitle string) string {
	return fmt.Sprintf(`Job Title: %s
Job Description: %s

Generate comprehensive interview questions for this position.`, jobTitle, jobText)
}

func skillGapPrompt(resumeText, jobText string) string {
	return fmt.Sprintf(`Candidate Resume:
%s

Job Requirements:
%s

Analyze the skill gap and provide learning recommendations.`, resumeText, jobText)
}

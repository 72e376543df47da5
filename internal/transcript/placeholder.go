package transcript

// Placeholder is the demo transcript substituted when no channel produces text
// and the placeholder policy is enabled.
const Placeholder = `Welcome to this comprehensive guide on content marketing strategies that actually work.

In today's video, we're going to cover three key areas that most businesses get wrong when it comes to content marketing.

First, let's talk about understanding your audience. Most companies create content without really knowing who they're talking to. They assume their audience wants one thing, but in reality, their pain points are completely different.

The second mistake is creating content without a clear conversion path. You might get lots of views and engagement, but if you're not guiding people toward a specific action, you're missing out on potential leads and customers.

Finally, the third area where businesses struggle is consistency. They'll post regularly for a few weeks, then disappear for months. Your audience needs to know they can rely on you for valuable content.

Let me share a case study from one of our clients who implemented these strategies and saw a 300% increase in qualified leads within just 90 days.

The key was creating a content hub that addressed each stage of their customer journey, from awareness all the way through to decision-making.

If you want to learn more about implementing these strategies in your business, make sure to subscribe and hit the notification bell. I'll be sharing more detailed tutorials in the coming weeks.`
